package report

import "strings"

type stageKey string

const (
	stageIdea    stageKey = "idea"
	stagePreSeed stageKey = "pre-seed"
	stageSeed    stageKey = "seed"
	stageSeriesA stageKey = "series a"
	stageOther   stageKey = ""
)

var stageAliases = map[string]stageKey{
	"idea":     stageIdea,
	"pre-seed": stagePreSeed,
	"preseed":  stagePreSeed,
	"pre seed": stagePreSeed,
	"seed":     stageSeed,
	"series a": stageSeriesA,
	"seriesa":  stageSeriesA,
	"a":        stageSeriesA,
}

func canonicalStage(stage string) stageKey {
	if k, ok := stageAliases[strings.ToLower(Normalize(stage))]; ok {
		return k
	}
	return stageOther
}

var nextSteps = map[stageKey][3]string{
	stageIdea: {
		"Run 15-20 customer discovery interviews to confirm the problem is painful and frequent.",
		"Put a landing page or clickable prototype in front of prospects and measure sign-ups.",
		"Define the smallest paid offer you could sell within the next 90 days.",
	},
	stagePreSeed: {
		"Ship an MVP to a first cohort of design partners and collect weekly feedback.",
		"Instrument activation and retention from day one so early usage is measurable.",
		"Line up angels or pre-seed funds with domain expertise in this market.",
	},
	stageSeed: {
		"Prove one repeatable acquisition channel with a known cost per customer.",
		"Track cohort retention and net revenue retention every month.",
		"Document the sales motion before hiring the first go-to-market lead.",
	},
	stageSeriesA: {
		"Scale the go-to-market team against a playbook that already works.",
		"Bring CAC payback under 18 months and show improving gross margin.",
		"Set up board-level reporting on ARR, burn multiple and runway.",
	},
	stageOther: {
		"Clarify the company's current stage and the milestones for the next 12 months.",
		"Quantify traction with revenue, active users or retention figures.",
		"List the top three risks and a concrete mitigation for each.",
	},
}

// NextStepsFor returns the three pieces of advice for a funding stage.
// Unknown stages get the generic set.
func NextStepsFor(stage string) []string {
	steps := nextSteps[canonicalStage(stage)]
	return steps[:]
}

// VerdictFor runs the verdict cascade. At seed and Series A a strong traction
// signal is checked before the no-traction fallback; if both heuristics fire
// on the same text the strong signal wins.
func VerdictFor(stage, traction string, riskBullets []string) Verdict {
	hasNumber := HasNumber(traction)
	none := LooksLikeNoTraction(traction)
	strong := SeemsStrong(traction)
	heavyCompetition := MentionsHeavyCompetition(riskBullets)

	switch canonicalStage(stage) {
	case stageIdea, stagePreSeed:
		if hasNumber {
			return Verdict{Label: VerdictWatch, Reason: "Early numbers are encouraging, but it is too soon for a conviction call; revisit after the next milestone."}
		}
		return Verdict{Label: VerdictWatch, Reason: "Too early to judge without measurable traction; revisit once there are numbers to look at."}
	case stageSeed:
		switch {
		case strong && !heavyCompetition:
			return Verdict{Label: VerdictInvest, Reason: "Quantified traction with revenue or retention signals is ahead of what most seed companies show."}
		case none:
			return Verdict{Label: VerdictAvoid, Reason: "A seed round without meaningful traction leaves little evidence that the model works."}
		default:
			return Verdict{Label: VerdictWatch, Reason: "Promising, but traction is not yet strong or differentiated enough for seed conviction."}
		}
	case stageSeriesA:
		switch {
		case strong:
			return Verdict{Label: VerdictInvest, Reason: "Series A metrics show strong, quantified revenue or retention."}
		case none:
			return Verdict{Label: VerdictAvoid, Reason: "No traction at Series A is a red flag for the round size being asked."}
		default:
			return Verdict{Label: VerdictWatch, Reason: "Needs harder revenue or retention evidence to justify a Series A."}
		}
	default:
		return Verdict{Label: VerdictWatch, Reason: "The stage is unclear, so there is not enough context to recommend either way."}
	}
}
