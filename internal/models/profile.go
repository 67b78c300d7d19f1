package models

// FinancialProfile is the fixed portfolio snapshot every answer is grounded on.
// Amounts are in rupees.
type FinancialProfile struct {
	NetWorth          int64             `json:"net_worth"`
	NetWorthChangePct float64           `json:"net_worth_change_pct"`
	MonthlyIncome     int64             `json:"monthly_income"`
	SavingsRatePct    float64           `json:"savings_rate_pct"`
	AvgReturnPct      float64           `json:"avg_return_pct"`
	DebtToIncomePct   float64           `json:"debt_to_income_pct"`
	Allocation        []Holding         `json:"allocation"`
	NetWorthHistory   []MonthlyValue    `json:"net_worth_history"`
	Funds             []FundPerformance `json:"funds"`
}

type Holding struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type MonthlyValue struct {
	Month string `json:"month"`
	Value int64  `json:"value"`
}

// FundPerformance compares a SIP's return against its benchmark over the year.
type FundPerformance struct {
	Name         string  `json:"name"`
	ReturnPct    float64 `json:"return_pct"`
	Benchmark    string  `json:"benchmark"`
	BenchmarkPct float64 `json:"benchmark_pct"`
}

// Delta is the fund's return minus its benchmark, in percentage points.
func (f FundPerformance) Delta() float64 {
	return f.ReturnPct - f.BenchmarkPct
}
