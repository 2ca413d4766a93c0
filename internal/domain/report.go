package domain

// PerformanceReport is the derived, read-only aggregate computed over a
// completed snapshot sequence and trade ledger. It carries no behavior;
// rendering and persistence belong to the caller.
type PerformanceReport struct {
	StrategyName string  `json:"strategyName"`
	Status       string  `json:"status"`
	Days         int     `json:"days"`
	Periods      int     `json:"periods"`

	InitialCapital float64 `json:"initialCapital"`
	FinalValue     float64 `json:"finalValue"`

	TotalReturn      float64  `json:"totalReturn"`
	AnnualizedReturn float64  `json:"annualizedReturn"`
	Volatility       float64  `json:"volatility"`
	MaxDrawdown      float64  `json:"maxDrawdown"`
	SharpeRatio      *float64 `json:"sharpeRatio"`
	WinRate          float64  `json:"winRate"`
	MaxLossStreak    int      `json:"maxLossStreak"`

	PeriodReturns []float64 `json:"periodReturns"`

	TradeCount int     `json:"tradeCount"`
	BuyCount   int     `json:"buyCount"`
	SellCount  int     `json:"sellCount"`
	TotalFees  float64 `json:"totalFees"`

	Rating float64 `json:"rating"`
	Grade  string  `json:"grade"`
}
