package dashboard

import (
	"math"
	"strings"
)

type RiskBand string

const (
	RiskLow      RiskBand = "low"
	RiskModerate RiskBand = "moderate"
	RiskHigh     RiskBand = "high"
)

// Color is the UI color scheme for a risk band.
func (b RiskBand) Color() string {
	switch b {
	case RiskHigh:
		return "red"
	case RiskModerate:
		return "yellow"
	default:
		return "green"
	}
}

const (
	highRiskThreshold     = 70
	moderateRiskThreshold = 40
	minHealthyRunway      = 12
)

// ClampRiskScore bounds a score to the 0-100 gauge range.
func ClampRiskScore(score int) int {
	return min(max(score, 0), 100)
}

// GaugeScore converts a backend risk score to the gauge's integer scale,
// dropping any fraction and clamping to 0-100.
func GaugeScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(min(max(score, 0), 100))
}

func RiskBandFor(score int) RiskBand {
	score = ClampRiskScore(score)
	switch {
	case score > highRiskThreshold:
		return RiskHigh
	case score > moderateRiskThreshold:
		return RiskModerate
	default:
		return RiskLow
	}
}

// ProjectedARR annualizes a monthly revenue figure.
func ProjectedARR(monthlyRevenue float64) float64 {
	return monthlyRevenue * 12
}

// RunwayCritical reports runway under a year at the current burn.
func RunwayCritical(months float64) bool {
	return months < minHealthyRunway
}

// IsHighRisk reports whether the backend flagged its recommendation as high risk.
func IsHighRisk(recommendation string) bool {
	return strings.Contains(recommendation, "HIGH RISK")
}

// Summary is the KPI card view derived from Data.
type Summary struct {
	CompanyName    string   `json:"company_name"`
	RiskScore      int      `json:"risk_score"`
	RiskBand       RiskBand `json:"risk_band"`
	RiskColor      string   `json:"risk_color"`
	RiskCategory   string   `json:"risk_category"`
	ProjectedARR   float64  `json:"projected_arr"`
	RunwayMonths   float64  `json:"runway_months"`
	RunwayCritical bool     `json:"runway_critical"`
	FundingRaised  float64  `json:"funding_raised"`
	RoundsTotal    float64  `json:"rounds_total"`
	HighRisk       bool     `json:"high_risk"`
}

func Summarize(d Data) Summary {
	score := GaugeScore(d.OverallRiskScore)
	band := RiskBandFor(score)
	var rounds float64
	for _, r := range d.FundingHistory {
		rounds += r.Amount
	}
	return Summary{
		CompanyName:    d.CompanyName,
		RiskScore:      score,
		RiskBand:       band,
		RiskColor:      band.Color(),
		RiskCategory:   d.RiskCategory,
		ProjectedARR:   ProjectedARR(d.FinancialMetrics.Revenue),
		RunwayMonths:   d.FinancialMetrics.RunwayMonths,
		RunwayCritical: RunwayCritical(d.FinancialMetrics.RunwayMonths),
		FundingRaised:  d.FinancialMetrics.FundingRaised,
		RoundsTotal:    rounds,
		HighRisk:       IsHighRisk(d.ExecutiveSummary.Recommendation),
	}
}
