// Package subscription tracks how many analyses an account may still run.
// Trial accounts get a fixed allowance; premium accounts are unlimited.
package subscription

import (
	"errors"
	"fmt"
)

type Plan string

const (
	PlanTrial   Plan = "trial"
	PlanPremium Plan = "premium"
)

// DefaultTrialLimit is the number of free analyses a new account gets.
const DefaultTrialLimit = 3

// Unlimited is what Remaining reports for premium accounts.
const Unlimited = -1

// ErrQuotaExhausted is returned when a trial account has no analyses left.
var ErrQuotaExhausted = errors.New("no analyses remaining; upgrade to premium")

type Subscription struct {
	Plan          Plan `json:"plan" db:"plan"`
	AnalysesUsed  int  `json:"analyses_used" db:"analyses_used"`
	AnalysesLimit int  `json:"analyses_limit" db:"analyses_limit"`
}

func NewTrial(limit int) Subscription {
	if limit <= 0 {
		limit = DefaultTrialLimit
	}
	return Subscription{Plan: PlanTrial, AnalysesLimit: limit}
}

func (s Subscription) IsPremium() bool {
	return s.Plan == PlanPremium
}

func (s Subscription) CanPerformAnalysis() bool {
	if s.IsPremium() {
		return true
	}
	return s.AnalysesUsed < s.AnalysesLimit
}

// Remaining returns analyses left, or Unlimited for premium.
func (s Subscription) Remaining() int {
	if s.IsPremium() {
		return Unlimited
	}
	return max(0, s.AnalysesLimit-s.AnalysesUsed)
}

// Consume records one analysis. It reports true when this call used up the
// last trial analysis. Premium accounts are not counted.
func (s *Subscription) Consume() (exhausted bool) {
	if s.IsPremium() {
		return false
	}
	s.AnalysesUsed++
	return !s.CanPerformAnalysis()
}

// Upgrade moves the account to premium and resets usage.
func (s *Subscription) Upgrade() {
	s.Plan = PlanPremium
	s.AnalysesUsed = 0
	s.AnalysesLimit = 0
}

// StatusLine is the short quota label shown next to the account name.
func (s Subscription) StatusLine() string {
	if s.IsPremium() {
		return "Premium - Unlimited analyses"
	}
	remaining := s.Remaining()
	if remaining == 0 {
		return "Trial expired - Upgrade to continue"
	}
	return fmt.Sprintf("%d free analyses remaining", remaining)
}

// UsagePercent is the share of the trial allowance already used.
func (s Subscription) UsagePercent() float64 {
	if s.IsPremium() || s.AnalysesLimit <= 0 {
		return 100
	}
	return min(100, float64(s.AnalysesUsed)/float64(s.AnalysesLimit)*100)
}

// Status is the JSON view of a subscription.
type Status struct {
	Plan         Plan    `json:"plan"`
	Remaining    int     `json:"remaining"`
	AnalysesUsed int     `json:"analyses_used"`
	UsagePercent float64 `json:"usage_percent"`
	StatusLine   string  `json:"status_line"`
}

func (s Subscription) Status() Status {
	return Status{
		Plan:         s.Plan,
		Remaining:    s.Remaining(),
		AnalysesUsed: s.AnalysesUsed,
		UsagePercent: s.UsagePercent(),
		StatusLine:   s.StatusLine(),
	}
}
