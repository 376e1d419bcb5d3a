package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finxray/finxray/internal/report"
	"github.com/finxray/finxray/internal/subscription"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAnalysis(email, company string) *Analysis {
	in := report.FounderInputs{
		CompanyName:  company,
		Industry:     "Grocery delivery",
		Stage:        "Seed",
		Description:  "Same-day grocery delivery for small towns.",
		RevenueModel: "Delivery fee plus basket margin",
		Traction:     "$40k MRR, 30% month-over-month growth",
		Team:         "Ex-Instacart ops lead and a logistics engineer",
		Risks:        "Thin margins",
	}
	return &Analysis{Email: email, Inputs: in, Report: report.Generate(in)}
}

func TestUpsertAccountCreatesTrial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acct, err := s.UpsertAccount(ctx, "  Founder@Example.com ", "")
	require.NoError(t, err)
	assert.Equal(t, "founder@example.com", acct.Email)
	assert.Equal(t, RoleAnalyst, acct.Role)
	assert.Equal(t, subscription.NewTrial(subscription.DefaultTrialLimit), acct.Subscription)
	assert.False(t, acct.CreatedAt.IsZero())

	again, err := s.UpsertAccount(ctx, "founder@example.com", RolePartner)
	require.NoError(t, err)
	assert.Equal(t, RolePartner, again.Role)
	assert.Equal(t, acct.CreatedAt, again.CreatedAt)
}

func TestUpsertAccountRequiresEmail(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpsertAccount(context.Background(), "   ", RoleAnalyst)
	require.Error(t, err)
}

func TestSetTrialLimitAppliesToNewAccounts(t *testing.T) {
	s := newTestStore(t)
	s.SetTrialLimit(5)
	acct, err := s.UpsertAccount(context.Background(), "a@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, 5, acct.Subscription.AnalysesLimit)
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetAccount(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveSubscriptionAndSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	acct, err := s.UpsertAccount(ctx, "a@example.com", "")
	require.NoError(t, err)

	sub := acct.Subscription
	sub.Upgrade()
	require.NoError(t, s.SaveSubscription(ctx, acct.Email, sub))
	require.NoError(t, s.SaveSettings(ctx, acct.Email, true))

	got, err := s.GetAccount(ctx, acct.Email)
	require.NoError(t, err)
	assert.True(t, got.Subscription.IsPremium())
	assert.True(t, got.NotifyHighRisk)

	require.ErrorIs(t, s.SaveSettings(ctx, "missing@example.com", true), ErrNotFound)
}

func TestRecordAnalysisConsumesQuota(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.UpsertAccount(ctx, "a@example.com", "")
	require.NoError(t, err)

	for i := 1; i <= subscription.DefaultTrialLimit; i++ {
		sub, exhausted, err := s.RecordAnalysis(ctx, sampleAnalysis("a@example.com", "Basket"))
		require.NoError(t, err)
		assert.Equal(t, i, sub.AnalysesUsed)
		assert.Equal(t, i == subscription.DefaultTrialLimit, exhausted)
	}

	a := sampleAnalysis("a@example.com", "Basket")
	_, exhausted, err := s.RecordAnalysis(ctx, a)
	require.ErrorIs(t, err, subscription.ErrQuotaExhausted)
	assert.True(t, exhausted)

	_, err = s.GetAnalysis(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound, "refused analysis must not be stored")

	list, err := s.ListAnalyses(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Len(t, list, subscription.DefaultTrialLimit)
}

func TestRecordAnalysisPremiumIsUnlimited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	acct, err := s.UpsertAccount(ctx, "p@example.com", RolePartner)
	require.NoError(t, err)
	sub := acct.Subscription
	sub.Upgrade()
	require.NoError(t, s.SaveSubscription(ctx, acct.Email, sub))

	for range 10 {
		got, exhausted, err := s.RecordAnalysis(ctx, sampleAnalysis(acct.Email, "Basket"))
		require.NoError(t, err)
		assert.False(t, exhausted)
		assert.Equal(t, 0, got.AnalysesUsed)
	}
}

func TestRecordAnalysisConcurrentNeverOverspends(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.UpsertAccount(ctx, "a@example.com", "")
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.RecordAnalysis(ctx, sampleAnalysis("a@example.com", "Basket"))
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, subscription.DefaultTrialLimit, success)
}

func TestAnalysisRoundTripAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "roundtrip.db")
	ctx := context.Background()

	s1, err := Open(dbPath)
	require.NoError(t, err)
	a := sampleAnalysis("a@example.com", "Basket")
	a.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s1.SaveAnalysis(ctx, a))
	require.NotEmpty(t, a.ID)
	require.NoError(t, s1.SetCommentary(ctx, a.ID, "Looks promising."))
	require.NoError(t, s1.Close())

	s2, err := Open(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Inputs, got.Inputs)
	assert.Equal(t, a.Report, got.Report)
	assert.Equal(t, "Looks promising.", got.Commentary)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))

	require.ErrorIs(t, s2.SetCommentary(ctx, "missing", "x"), ErrNotFound)
}

func TestListAnalysesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"First", "Second", "Third"} {
		a := sampleAnalysis("a@example.com", name)
		a.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.SaveAnalysis(ctx, a))
	}
	require.NoError(t, s.SaveAnalysis(ctx, sampleAnalysis("other@example.com", "Elsewhere")))

	list, err := s.ListAnalyses(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Third", list[0].Inputs.CompanyName)
	assert.Equal(t, "First", list[2].Inputs.CompanyName)
}

func TestToggleWatchlist(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := sampleAnalysis("a@example.com", "Basket")
	require.NoError(t, s.SaveAnalysis(ctx, a))

	listed, err := s.ToggleWatchlist(ctx, "a@example.com", a.ID)
	require.NoError(t, err)
	assert.True(t, listed)

	in, err := s.InWatchlist(ctx, "a@example.com", a.ID)
	require.NoError(t, err)
	assert.True(t, in)

	watched, err := s.ListWatchlist(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, watched, 1)
	assert.Equal(t, a.ID, watched[0].ID)

	listed, err = s.ToggleWatchlist(ctx, "a@example.com", a.ID)
	require.NoError(t, err)
	assert.False(t, listed)

	watched, err = s.ListWatchlist(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, watched)
}

func TestToggleWatchlistRejectsForeignAnalysis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := sampleAnalysis("owner@example.com", "Basket")
	require.NoError(t, s.SaveAnalysis(ctx, a))

	_, err := s.ToggleWatchlist(ctx, "intruder@example.com", a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.ToggleWatchlist(ctx, "owner@example.com", "no-such-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListAnalysesOrdersWithinOneSecond(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	onSecond := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	for _, tc := range []struct {
		name string
		at   time.Time
	}{
		{"OnTheSecond", onSecond},
		{"HalfSecondLater", onSecond.Add(500 * time.Millisecond)},
		{"NanoLater", onSecond.Add(500*time.Millisecond + time.Nanosecond)},
	} {
		a := sampleAnalysis("a@example.com", tc.name)
		a.CreatedAt = tc.at
		require.NoError(t, s.SaveAnalysis(ctx, a))
	}

	list, err := s.ListAnalyses(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "NanoLater", list[0].Inputs.CompanyName)
	assert.Equal(t, "HalfSecondLater", list[1].Inputs.CompanyName)
	assert.Equal(t, "OnTheSecond", list[2].Inputs.CompanyName)
	assert.True(t, list[2].CreatedAt.Equal(onSecond))
}

func TestFormatTimeIsFixedWidth(t *testing.T) {
	whole := formatTime(time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC))
	frac := formatTime(time.Date(2026, 3, 1, 10, 0, 5, 500_000_000, time.FixedZone("IST", 5*3600+1800)))
	assert.Len(t, frac, len(whole))
	assert.Equal(t, "2026-03-01T10:00:05.000000000Z", whole)
	assert.Less(t, frac, whole, "IST 10:00:05.5 is 04:30:05.5 UTC")
}
