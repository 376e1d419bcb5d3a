package report

// Disclaimer is appended to every rendered report.
const Disclaimer = "This is an automated first-pass screen built from founder-supplied text. " +
	"It is not investment advice and has not been checked against external data."

// ExcerptChars is the character budget for founder text quoted inside a bullet.
const ExcerptChars = 140

type MarketSize string

const (
	MarketSmall  MarketSize = "Small"
	MarketMedium MarketSize = "Medium"
	MarketLarge  MarketSize = "Large"
)

type VerdictLabel string

const (
	VerdictInvest VerdictLabel = "Invest"
	VerdictWatch  VerdictLabel = "Watch"
	VerdictAvoid  VerdictLabel = "Avoid"
)

// FounderInputs is the set of free-text fields a founder submits. Only the
// caller enforces which fields are required; Generate accepts anything.
type FounderInputs struct {
	CompanyName  string `json:"company_name" yaml:"company_name" validate:"required"`
	Industry     string `json:"industry" yaml:"industry" validate:"required"`
	Stage        string `json:"stage" yaml:"stage" validate:"required"`
	Description  string `json:"description" yaml:"description" validate:"required"`
	RevenueModel string `json:"revenue_model" yaml:"revenue_model" validate:"required"`
	Traction     string `json:"traction" yaml:"traction" validate:"required"`
	Team         string `json:"team" yaml:"team" validate:"required"`
	Funding      string `json:"funding,omitempty" yaml:"funding,omitempty"`
	Risks        string `json:"risks,omitempty" yaml:"risks,omitempty"`
}

type Market struct {
	Size   MarketSize `json:"size"`
	Reason string     `json:"reason"`
}

type Verdict struct {
	Label  VerdictLabel `json:"label"`
	Reason string       `json:"reason"`
}

// Report is the generator's output. Callers treat it as a value; nothing in
// this package mutates a Report after Generate returns it.
type Report struct {
	Snapshot    string   `json:"snapshot"`
	Strengths   []string `json:"strengths"`
	Risks       []string `json:"risks"`
	Market      Market   `json:"market"`
	Competitors string   `json:"competitors"`
	Viability   string   `json:"viability"`
	NextSteps   []string `json:"next_steps"`
	Verdict     Verdict  `json:"verdict"`
}
