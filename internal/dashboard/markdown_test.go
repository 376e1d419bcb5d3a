package dashboard

import (
	"strings"
	"testing"
)

func TestMarkdownRendersFundingTable(t *testing.T) {
	d := Data{
		CompanyName:      "Basket",
		OverallRiskScore: 35,
		RiskCategory:     "Low",
		FinancialMetrics: FinancialMetrics{Revenue: 125000, RunwayMonths: 18, FundingRaised: 2500000},
		FundingHistory: []FundingRound{
			{Round: "Seed", Amount: 2000000, Date: "2024-03-01", Lead: "Alpha | Beta Ventures", Valuation: 12000000},
		},
		ExecutiveSummary: ExecutiveSummary{
			Headline:       "Efficient growth in a crowded market",
			KeyPoints:      []string{"Strong unit economics", "Experienced team"},
			Recommendation: "MODERATE - monitor burn",
		},
	}
	md := Markdown(d)
	for _, want := range []string{
		"# Basket: Investment Analysis",
		"| Risk Score | 35/100 (low) | Low |",
		"$1,500,000",
		"| Seed | $2,000,000 | 2024-03-01 | Alpha \\| Beta Ventures | $12,000,000 |",
		"- Strong unit economics",
		"> [OK] **MODERATE - monitor burn**",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
}

func TestMarkdownFlagsHighRiskAndShortRunway(t *testing.T) {
	d := Data{
		CompanyName:      "Shaky",
		OverallRiskScore: 90,
		FinancialMetrics: FinancialMetrics{RunwayMonths: 4},
		ExecutiveSummary: ExecutiveSummary{Recommendation: "HIGH RISK"},
	}
	md := Markdown(d)
	if !strings.Contains(md, "> [!] **HIGH RISK**") {
		t.Fatalf("expected high-risk marker:\n%s", md)
	}
	if !strings.Contains(md, "Under 12 months") {
		t.Fatalf("expected runway warning:\n%s", md)
	}
	if !strings.Contains(md, "No funding rounds reported.") {
		t.Fatalf("expected empty funding notice:\n%s", md)
	}
}

func TestMarkdownRendersTimeline(t *testing.T) {
	d := Data{
		CompanyName: "Basket",
		TimelineData: TimelineData{
			Months:   []string{"Jan", "Feb", "Mar"},
			Revenue:  []float64{30000, 40000, 52000},
			BurnRate: []float64{90000, 95000},
			Users:    []float64{800, 1100, 1500},
		},
	}
	md := Markdown(d)
	for _, want := range []string{
		"## Timeline",
		"| Jan | $30,000 | $90,000 | 800 |",
		"| Mar | $52,000 | - | 1,500 |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
	if strings.Index(md, "## Timeline") > strings.Index(md, "## Executive Summary") {
		t.Fatalf("timeline should precede the executive summary:\n%s", md)
	}
}

func TestMarkdownOmitsEmptyTimeline(t *testing.T) {
	if md := Markdown(Data{CompanyName: "Basket"}); strings.Contains(md, "## Timeline") {
		t.Fatalf("did not expect a timeline section:\n%s", md)
	}
}
