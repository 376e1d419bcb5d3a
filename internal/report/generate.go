package report

import (
	"fmt"
	"strings"
)

const competitorsPlaceholder = "Competitor mapping needs external market data. List the direct alternatives " +
	"and the workaround customers use today, then explain why they would switch."

var (
	strengthFillers = []string{
		"The founders have articulated a clear problem and a specific customer to solve it for.",
		"Being early leaves room to sharpen positioning before the category settles.",
	}
	riskFillers = []string{
		"Customer adoption may be slower than the plan assumes.",
		"Execution risk is high, as it is for most companies at this stage.",
	}
)

const (
	minListItems = 2
	maxListItems = 4
)

// Generate builds a Report from founder inputs. It is pure and total: the
// same inputs always produce the same Report and blank fields only change
// which templates are chosen.
func Generate(in FounderInputs) Report {
	riskBullets := SplitBullets(in.Risks)
	market := MarketSizeFor(in.Industry, in.Description)
	return Report{
		Snapshot:    snapshot(in),
		Strengths:   strengths(in, market),
		Risks:       padList(riskBullets, riskFillers),
		Market:      market,
		Competitors: competitorsPlaceholder,
		Viability:   viability(in),
		NextSteps:   NextStepsFor(in.Stage),
		Verdict:     VerdictFor(in.Stage, in.Traction, riskBullets),
	}
}

func snapshot(in FounderInputs) string {
	name := orDefault(Normalize(in.CompanyName), "This company")
	industry := orDefault(Normalize(in.Industry), "an unspecified industry")
	stage := orDefault(Normalize(in.Stage), "unspecified")

	parts := []string{fmt.Sprintf("%s is building in %s (stage: %s).", name, industry, stage)}
	if d := Shorten(in.Description, 2*ExcerptChars); d != "" {
		parts = append(parts, sentence(d))
	}
	if f := Shorten(in.Funding, ExcerptChars); f != "" {
		parts = append(parts, sentence("Funding and runway: "+f))
	}
	return strings.Join(parts, " ")
}

func strengths(in FounderInputs, market Market) []string {
	var out []string
	if team := Shorten(in.Team, ExcerptChars); team != "" {
		out = append(out, sentence("Founding team: "+team))
	}
	if traction := Shorten(in.Traction, ExcerptChars); traction != "" && !LooksLikeNoTraction(in.Traction) {
		out = append(out, sentence("Traction so far: "+traction))
	}
	if model := Shorten(in.RevenueModel, ExcerptChars); model != "" {
		out = append(out, sentence("Defined revenue model: "+model))
	}
	if market.Size == MarketLarge {
		out = append(out, "Targets a large market where a focused wedge can still grow into a big business.")
	}
	return padList(out, strengthFillers)
}

func viability(in FounderInputs) string {
	model := Shorten(in.RevenueModel, ExcerptChars)
	if model == "" {
		return "No revenue model was provided, so the path to monetization is unclear."
	}
	var verdict string
	switch {
	case LooksLikeNoTraction(in.Traction):
		verdict = "Until paying customers validate pricing, viability remains unproven."
	case SeemsStrong(in.Traction):
		verdict = "Reported revenue or retention figures suggest the model already works at small scale."
	case HasNumber(in.Traction):
		verdict = "Early figures exist; the next test is whether unit economics hold as volume grows."
	default:
		verdict = "Traction is described only qualitatively; quantify it to test the model."
	}
	return sentence("Revenue model: "+model) + " " + verdict
}

// padList caps items at maxListItems and tops it up from fillers, in order,
// until it holds minListItems.
func padList(items, fillers []string) []string {
	out := make([]string, 0, maxListItems)
	for _, it := range items {
		if len(out) == maxListItems {
			break
		}
		out = append(out, it)
	}
	for _, f := range fillers {
		if len(out) >= minListItems {
			break
		}
		out = append(out, f)
	}
	return out
}

func sentence(s string) string {
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
