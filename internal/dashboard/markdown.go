package dashboard

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Markdown renders the dashboard view: KPI cards, funding history and the
// executive summary.
func Markdown(d Data) string {
	s := Summarize(d)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Investment Analysis\n\n", sanitize(d.CompanyName))
	if h := sanitize(d.ExecutiveSummary.Headline); h != "" {
		fmt.Fprintf(&b, "%s\n\n", h)
	}

	fmt.Fprintf(&b, "## Key Metrics\n\n")
	fmt.Fprintf(&b, "| Metric | Value | Note |\n|--------|-------|------|\n")
	fmt.Fprintf(&b, "| Risk Score | %d/100 (%s) | %s |\n", s.RiskScore, s.RiskBand, sanitizeCell(d.RiskCategory))
	fmt.Fprintf(&b, "| Revenue (Annual) | $%s | Projected ARR |\n", usd(s.ProjectedARR))
	runwayNote := "At current burn rate"
	if s.RunwayCritical {
		runwayNote = "[!] Under 12 months at current burn rate"
	}
	fmt.Fprintf(&b, "| Runway | %s months | %s |\n", humanize.FtoaWithDigits(s.RunwayMonths, 1), runwayNote)
	fmt.Fprintf(&b, "| Total Funding | $%s | Raised to date |\n\n", usd(s.FundingRaised))

	fmt.Fprintf(&b, "## Funding History\n\n")
	if len(d.FundingHistory) == 0 {
		fmt.Fprintf(&b, "No funding rounds reported.\n\n")
	} else {
		fmt.Fprintf(&b, "| Round | Amount (USD) | Date | Lead Investor | Valuation |\n")
		fmt.Fprintf(&b, "|-------|--------------|------|---------------|-----------|\n")
		for _, r := range d.FundingHistory {
			fmt.Fprintf(&b, "| %s | $%s | %s | %s | $%s |\n",
				sanitizeCell(r.Round), usd(r.Amount), sanitizeCell(r.Date), sanitizeCell(r.Lead), usd(r.Valuation))
		}
		fmt.Fprintf(&b, "\n")
	}

	writeTimeline(&b, d.TimelineData)

	fmt.Fprintf(&b, "## Executive Summary\n\n")
	for _, p := range d.ExecutiveSummary.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", sanitize(p))
	}
	if rec := sanitize(d.ExecutiveSummary.Recommendation); rec != "" {
		marker := "[OK]"
		if s.HighRisk {
			marker = "[!]"
		}
		fmt.Fprintf(&b, "\n> %s **%s**\n", marker, rec)
	}
	return b.String()
}

// writeTimeline renders the revenue vs burn and user growth series as one
// table keyed by month. Short series leave their cells as "-".
func writeTimeline(b *strings.Builder, t TimelineData) {
	if len(t.Months) == 0 {
		return
	}
	fmt.Fprintf(b, "## Timeline\n\n")
	fmt.Fprintf(b, "| Month | Revenue | Burn Rate | Users |\n|-------|---------|-----------|-------|\n")
	for i, m := range t.Months {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			sanitizeCell(m), seriesCell(t.Revenue, i, "$"), seriesCell(t.BurnRate, i, "$"), seriesCell(t.Users, i, ""))
	}
	fmt.Fprintf(b, "\n")
}

func seriesCell(series []float64, i int, prefix string) string {
	if i >= len(series) {
		return "-"
	}
	return prefix + usd(series[i])
}

func usd(v float64) string {
	return humanize.Comma(int64(v))
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func sanitizeCell(s string) string {
	return strings.ReplaceAll(sanitize(s), "|", "\\|")
}
