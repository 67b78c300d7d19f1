package services

import (
	"context"
	"strings"
	"time"
)

const (
	netWorthReply = "Based on your current financial data, your net worth has grown by 12.8% this month to ₹11.5L. This growth is primarily driven by your equity investments (+18.3%) and increased savings. Your net worth trajectory suggests you're on track to reach ₹15L by year-end."

	retirementAt40Reply = "Projecting to age 40 based on your current financial profile: With a 32% savings rate and 18.3% average returns, you're projected to have approximately ₹45-52L by age 40. This assumes continued employment, current investment strategy, and inflation-adjusted calculations."

	homeLoanReply = "Based on your ₹85K monthly income and current debt-to-income ratio of 18%, you can comfortably afford a ₹50L home loan. Your EMI would be around ₹42K (tenure: 20 years), bringing your total debt-to-income to 68% - within acceptable limits for your risk profile."

	sipReply = "Analyzing your SIP performance: Your Large Cap SIP has underperformed the Nifty 50 by 2.3% this year (12.1% vs 14.4%). However, your Mid Cap and Small Cap SIPs are outperforming their benchmarks by 3.2% and 5.1% respectively. Consider rebalancing or switching the underperforming fund."

	fallbackReply = "I've analyzed your question using your financial data from Fi's MCP Server. Let me provide you with personalized insights based on your specific situation. Could you provide more details about what specific aspect you'd like me to focus on?"
)

type replyRule struct {
	match func(q string) bool
	reply string
}

// Evaluated in order; first match wins.
var replyRules = []replyRule{
	{
		match: func(q string) bool { return strings.Contains(q, "net worth") },
		reply: netWorthReply,
	},
	{
		match: func(q string) bool { return strings.Contains(q, "40") && strings.Contains(q, "money") },
		reply: retirementAt40Reply,
	},
	{
		match: func(q string) bool { return strings.Contains(q, "home loan") || strings.Contains(q, "50l") },
		reply: homeLoanReply,
	},
	{
		match: func(q string) bool { return strings.Contains(q, "sip") && strings.Contains(q, "underperformed") },
		reply: sipReply,
	},
}

// LocalAdvisor answers from canned paragraphs. It never fails.
type LocalAdvisor struct {
	delay time.Duration
}

// NewLocalAdvisor returns a heuristic provider that waits delay before
// answering, to mimic model latency. Zero answers immediately.
func NewLocalAdvisor(delay time.Duration) *LocalAdvisor {
	return &LocalAdvisor{delay: delay}
}

func (a *LocalAdvisor) Generate(ctx context.Context, question string) (string, error) {
	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	return LocalReply(question), nil
}

// LocalReply is the pure matching step of LocalAdvisor.
func LocalReply(question string) string {
	q := strings.ToLower(question)
	for _, rule := range replyRules {
		if rule.match(q) {
			return rule.reply
		}
	}
	return fallbackReply
}
