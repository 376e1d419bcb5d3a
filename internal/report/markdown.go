package report

import (
	"fmt"
	"strings"
)

// Markdown renders a report as the fixed set of sections the UI shows:
// Snapshot, Strengths, Risks, Market & Competition, Business Model Viability,
// Suggested Next Steps and Verdict.
func Markdown(in FounderInputs, r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Startup Analysis\n\n", sanitize(orDefault(Normalize(in.CompanyName), "Untitled company")))
	fmt.Fprintf(&b, "- Industry: %s\n", sanitize(orDefault(Normalize(in.Industry), "-")))
	fmt.Fprintf(&b, "- Stage: %s\n", sanitize(orDefault(Normalize(in.Stage), "-")))
	fmt.Fprintf(&b, "- Verdict: `%s`\n\n", r.Verdict.Label)

	fmt.Fprintf(&b, "## Snapshot\n\n%s\n\n", sanitize(r.Snapshot))

	fmt.Fprintf(&b, "## Strengths\n\n")
	writeList(&b, r.Strengths)

	fmt.Fprintf(&b, "## Risks\n\n")
	writeList(&b, r.Risks)

	fmt.Fprintf(&b, "## Market & Competition\n\n")
	fmt.Fprintf(&b, "| Market size | Reason |\n|-------------|--------|\n")
	fmt.Fprintf(&b, "| %s | %s |\n\n", r.Market.Size, sanitizeCell(r.Market.Reason))
	fmt.Fprintf(&b, "**Competitors**: %s\n\n", sanitize(r.Competitors))

	fmt.Fprintf(&b, "## Business Model Viability\n\n%s\n\n", sanitize(r.Viability))

	fmt.Fprintf(&b, "## Suggested Next Steps\n\n")
	for i, s := range r.NextSteps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, sanitize(s))
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "## Verdict\n\n")
	fmt.Fprintf(&b, "**%s**: %s\n\n", r.Verdict.Label, sanitize(r.Verdict.Reason))
	fmt.Fprintf(&b, "---\n\n_%s_\n", Disclaimer)
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", sanitize(it))
	}
	fmt.Fprintf(b, "\n")
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// sanitizeCell also escapes pipes that would split a table column.
func sanitizeCell(s string) string {
	return strings.ReplaceAll(sanitize(s), "|", "\\|")
}
