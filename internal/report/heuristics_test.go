package report

import "testing"

func TestLooksLikeNoTraction(t *testing.T) {
	cases := map[string]bool{
		"None":                         true,
		"no traction yet":              true,
		"Not yet launched":             true,
		"not\n  yet launched":          true,
		"anonymous beta users":         true, // accepted false positive
		"noneed":                       true,
		"$20k MRR growing 10% monthly": false,
		"":                             false,
	}
	for in, want := range cases {
		if got := LooksLikeNoTraction(in); got != want {
			t.Fatalf("LooksLikeNoTraction(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSeemsStrongRequiresNumberAndSignal(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"We have $50k MRR and 95% retention", true},
		{"Profitable since 2023", true},
		{"120% NDR", true},
		{"Great retention", false},
		{"1,000 waitlist signups", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := SeemsStrong(tc.in); got != tc.want {
			t.Fatalf("SeemsStrong(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMentionsHeavyCompetition(t *testing.T) {
	if !MentionsHeavyCompetition([]string{"Regulation", "Heavy COMPETITION from incumbents"}) {
		t.Fatal("expected competition match to be case-insensitive")
	}
	if MentionsHeavyCompetition([]string{"Competitive pricing pressure"}) {
		t.Fatal("expected no match without the word competition")
	}
	if MentionsHeavyCompetition(nil) {
		t.Fatal("expected no match for empty bullets")
	}
}

func TestMarketSizeFor(t *testing.T) {
	cases := []struct {
		industry, description string
		want                  MarketSize
	}{
		{"Fintech", "Payroll advances for gig workers", MarketLarge},
		{"Deep Tech Robotics", "Autonomous inspection robots", MarketSmall},
		{"Deep\n  Tech", "inspection robots", MarketSmall},
		{"Widgets", "generic widgets", MarketMedium},
		{"Industrial", "Sensors for grocery cold chains", MarketLarge},
		{"", "", MarketMedium},
	}
	for _, tc := range cases {
		got := MarketSizeFor(tc.industry, tc.description)
		if got.Size != tc.want {
			t.Fatalf("MarketSizeFor(%q, %q) = %s, want %s", tc.industry, tc.description, got.Size, tc.want)
		}
		if got.Reason == "" {
			t.Fatalf("expected a reason for %q", tc.industry)
		}
	}
}
