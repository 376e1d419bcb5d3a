package report

import (
	"fmt"
	"strings"
)

// Keyword tables. Order matters wherever the first match is reported.
var (
	noTractionPhrases = []string{"none", "no traction", "not yet"}

	strongSignalWords = []string{"arr", "mrr", "retention", "ndr", "renewal", "profitable", "profit", "cashflow"}

	largeMarketKeywords = []string{
		"consumer", "grocery", "ecommerce", "retail", "logistics", "delivery",
		"payments", "fintech", "health", "education", "marketplace",
	}

	smallMarketKeywords = []string{"niche", "specialty", "industrial", "deep tech", "deeptech"}
)

// LooksLikeNoTraction reports whether traction text reads as "nothing yet".
// Plain substring match on normalized text, so "anonymous" counts as "none".
func LooksLikeNoTraction(text string) bool {
	_, ok := containsAny(strings.ToLower(Normalize(text)), noTractionPhrases)
	return ok
}

// HasNumber reports whether text contains an ASCII digit.
func HasNumber(text string) bool {
	return strings.ContainsAny(text, "0123456789")
}

// SeemsStrong reports quantified traction that names a revenue or retention signal.
func SeemsStrong(traction string) bool {
	if !HasNumber(traction) {
		return false
	}
	_, ok := containsAny(strings.ToLower(Normalize(traction)), strongSignalWords)
	return ok
}

// MentionsHeavyCompetition reports whether any risk bullet talks about competition.
func MentionsHeavyCompetition(riskBullets []string) bool {
	for _, r := range riskBullets {
		if strings.Contains(strings.ToLower(Normalize(r)), "competition") {
			return true
		}
	}
	return false
}

// MarketSizeFor classifies the market from industry and description.
// Large keywords are checked before small ones; no match means Medium.
func MarketSizeFor(industry, description string) Market {
	text := strings.ToLower(Normalize(industry + " " + description))
	if kw, ok := containsAny(text, largeMarketKeywords); ok {
		return Market{
			Size:   MarketLarge,
			Reason: fmt.Sprintf("The industry and description point to a broad market (%q), with room for several large outcomes.", kw),
		}
	}
	if kw, ok := containsAny(text, smallMarketKeywords); ok {
		return Market{
			Size:   MarketSmall,
			Reason: fmt.Sprintf("The focus reads as specialised (%q); expect a smaller buyer pool and longer sales cycles.", kw),
		}
	}
	return Market{
		Size:   MarketMedium,
		Reason: "No strong signal of either a mass market or a narrow niche; sizing needs bottom-up customer counts.",
	}
}
