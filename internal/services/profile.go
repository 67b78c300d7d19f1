package services

import (
	"fmt"
	"strings"

	"fi-advisor-backend/internal/models"
)

// DefaultProfile is the demo portfolio shown across the dashboard.
func DefaultProfile() models.FinancialProfile {
	return models.FinancialProfile{
		NetWorth:          1150000,
		NetWorthChangePct: 12.8,
		MonthlyIncome:     85000,
		SavingsRatePct:    32,
		AvgReturnPct:      18.3,
		DebtToIncomePct:   18,
		Allocation: []models.Holding{
			{Name: "Equity", Value: 450000},
			{Name: "Fixed Deposits", Value: 300000},
			{Name: "Real Estate", Value: 250000},
			{Name: "Gold", Value: 100000},
			{Name: "Cash", Value: 50000},
		},
		NetWorthHistory: []models.MonthlyValue{
			{Month: "Jan", Value: 850000},
			{Month: "Feb", Value: 920000},
			{Month: "Mar", Value: 880000},
			{Month: "Apr", Value: 950000},
			{Month: "May", Value: 1020000},
			{Month: "Jun", Value: 1150000},
		},
		Funds: []models.FundPerformance{
			{Name: "Large Cap SIP", ReturnPct: 12.1, Benchmark: "Nifty 50", BenchmarkPct: 14.4},
			{Name: "Mid Cap SIP", ReturnPct: 22.5, Benchmark: "Nifty Midcap 150", BenchmarkPct: 19.3},
			{Name: "Small Cap SIP", ReturnPct: 28.4, Benchmark: "Nifty Smallcap 250", BenchmarkPct: 23.3},
		},
	}
}

// Suggestions are the canned questions offered beside the chat box.
func Suggestions() []models.Suggestion {
	return []models.Suggestion{
		{Text: "How much money will I have at 40?", Category: "Planning"},
		{Text: "How's my net worth growing?", Category: "Analysis"},
		{Text: "Can I afford a ₹50L home loan?", Category: "Planning"},
		{Text: "Which SIPs underperformed the market?", Category: "Investment"},
	}
}

// Narrative renders the profile as the context block of a generation prompt.
func Narrative(p models.FinancialProfile) string {
	var b strings.Builder
	b.WriteString("User's financial profile:\n")
	fmt.Fprintf(&b, "- Net worth: %s (%+.1f%% from last month)\n", FormatRupees(p.NetWorth), p.NetWorthChangePct)
	fmt.Fprintf(&b, "- Monthly income: %s\n", FormatRupees(p.MonthlyIncome))
	fmt.Fprintf(&b, "- Savings rate: %g%%\n", p.SavingsRatePct)
	fmt.Fprintf(&b, "- Average investment returns: %g%%\n", p.AvgReturnPct)
	fmt.Fprintf(&b, "- Debt-to-income ratio: %g%%\n", p.DebtToIncomePct)

	b.WriteString("- Holdings:\n")
	for _, h := range p.Allocation {
		fmt.Fprintf(&b, "  - %s: %s\n", h.Name, FormatRupees(h.Value))
	}

	b.WriteString("- Recent fund performance (this year):\n")
	for _, f := range p.Funds {
		verb := "outperformed"
		if f.Delta() < 0 {
			verb = "underperformed"
		}
		fmt.Fprintf(&b, "  - %s returned %g%% vs %s %g%% (%s by %.1f%%)\n",
			f.Name, f.ReturnPct, f.Benchmark, f.BenchmarkPct, verb, abs(f.Delta()))
	}
	return b.String()
}

// BuildAdvisorPrompt concatenates the profile narrative with the literal question.
func BuildAdvisorPrompt(p models.FinancialProfile, question string) string {
	var b strings.Builder
	b.WriteString("You are an AI financial advisor for an Indian user. You have access to their complete financial profile through Fi's MCP Server.\n\n")
	b.WriteString(Narrative(p))
	b.WriteString("\nAnswer the user's question using this profile. Be specific, use rupee amounts, and keep the answer under 150 words.\n\n")
	b.WriteString("User question: ")
	b.WriteString(question)
	return b.String()
}

// FormatRupees renders an amount in the lakh/thousand shorthand used in the UI
// (₹11.5L, ₹85K).
func FormatRupees(amount int64) string {
	switch {
	case amount >= 100000:
		return "₹" + trimZero(float64(amount)/100000) + "L"
	case amount >= 1000:
		return "₹" + trimZero(float64(amount)/1000) + "K"
	default:
		return fmt.Sprintf("₹%d", amount)
	}
}

func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
