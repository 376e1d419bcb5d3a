package dashboard

// Data is the analysis payload returned by the dashboard backend for an
// uploaded startup document.
type Data struct {
	CompanyName      string           `json:"company_name"`
	OverallRiskScore float64          `json:"overall_risk_score"`
	RiskCategory     string           `json:"risk_category"`
	FinancialMetrics FinancialMetrics `json:"financial_metrics"`
	FundingHistory   []FundingRound   `json:"funding_history"`
	TimelineData     TimelineData     `json:"timeline_data"`
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
}

// FinancialMetrics carries monthly revenue and burn; RunwayMonths is at the
// current burn rate.
type FinancialMetrics struct {
	Revenue       float64 `json:"revenue"`
	BurnRate      float64 `json:"burn_rate"`
	RunwayMonths  float64 `json:"runway_months"`
	FundingRaised float64 `json:"funding_raised"`
}

type FundingRound struct {
	Round     string  `json:"round"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Lead      string  `json:"lead"`
	Valuation float64 `json:"valuation"`
}

type TimelineData struct {
	Months   []string  `json:"months"`
	Revenue  []float64 `json:"revenue"`
	BurnRate []float64 `json:"burn_rate"`
	Users    []float64 `json:"users"`
}

type ExecutiveSummary struct {
	Headline       string   `json:"headline"`
	KeyPoints      []string `json:"key_points"`
	Recommendation string   `json:"recommendation"`
}

// DocumentAnalysis is the "analysis" object returned by the single-document
// analyze endpoint. Amounts are in INR.
type DocumentAnalysis struct {
	Revenue           float64        `json:"revenue"`
	Expenses          float64        `json:"expenses"`
	Profit            float64        `json:"profit"`
	Valuation         float64        `json:"valuation"`
	AIKPIScore        float64        `json:"ai_kpi_score"`
	FinancialKPIScore float64        `json:"financial_kpi_score"`
	RedFlags          []string       `json:"red_flags"`
	MarketComparison  map[string]any `json:"market_comparison,omitempty"`
}
