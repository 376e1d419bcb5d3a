// Package store persists accounts, generated analyses and watchlists in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/finxray/finxray/internal/report"
	"github.com/finxray/finxray/internal/subscription"
)

var ErrNotFound = errors.New("not found")

type Role string

const (
	RoleAnalyst Role = "analyst"
	RolePartner Role = "partner"
)

type Account struct {
	Email          string                    `json:"email"`
	Role           Role                      `json:"role"`
	NotifyHighRisk bool                      `json:"notify_high_risk"`
	Subscription   subscription.Subscription `json:"subscription"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// Analysis is one generated report together with the inputs it came from.
type Analysis struct {
	ID         string               `json:"id"`
	Email      string               `json:"email"`
	Inputs     report.FounderInputs `json:"inputs"`
	Report     report.Report        `json:"report"`
	Commentary string               `json:"commentary,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	email            TEXT PRIMARY KEY,
	role             TEXT NOT NULL DEFAULT 'analyst',
	notify_high_risk INTEGER NOT NULL DEFAULT 0,
	plan             TEXT NOT NULL DEFAULT 'trial',
	analyses_used    INTEGER NOT NULL DEFAULT 0,
	analyses_limit   INTEGER NOT NULL DEFAULT 3,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	id           TEXT PRIMARY KEY,
	email        TEXT NOT NULL,
	company_name TEXT NOT NULL DEFAULT '',
	verdict      TEXT NOT NULL DEFAULT '',
	inputs       TEXT NOT NULL,
	report       TEXT NOT NULL,
	commentary   TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS analyses_email_created ON analyses (email, created_at);

CREATE TABLE IF NOT EXISTS watchlist (
	email       TEXT NOT NULL,
	analysis_id TEXT NOT NULL,
	added_at    TEXT NOT NULL,
	PRIMARY KEY (email, analysis_id)
);
`

// Store is safe for concurrent use. Writes that read-modify-write a quota
// run inside a transaction on the single connection.
type Store struct {
	db         *sqlx.DB
	mu         sync.Mutex
	trialLimit int
}

func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, trialLimit: subscription.DefaultTrialLimit}, nil
}

// SetTrialLimit sets the allowance given to accounts created from now on.
func (s *Store) SetTrialLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.trialLimit = n
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// timeLayout is fixed width so that text ordering of stored timestamps
// matches chronological ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type accountRow struct {
	Email          string `db:"email"`
	Role           string `db:"role"`
	NotifyHighRisk bool   `db:"notify_high_risk"`
	Plan           string `db:"plan"`
	AnalysesUsed   int    `db:"analyses_used"`
	AnalysesLimit  int    `db:"analyses_limit"`
	CreatedAt      string `db:"created_at"`
}

func (r accountRow) account() Account {
	created, _ := time.Parse(time.RFC3339Nano, r.CreatedAt)
	return Account{
		Email:          r.Email,
		Role:           Role(r.Role),
		NotifyHighRisk: r.NotifyHighRisk,
		Subscription: subscription.Subscription{
			Plan:          subscription.Plan(r.Plan),
			AnalysesUsed:  r.AnalysesUsed,
			AnalysesLimit: r.AnalysesLimit,
		},
		CreatedAt: created,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpsertAccount creates the account on first sight with a fresh trial. A
// non-empty role replaces the stored one.
func (s *Store) UpsertAccount(ctx context.Context, email string, role Role) (Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Account{}, errors.New("email is required")
	}
	insertRole := role
	if insertRole == "" {
		insertRole = RoleAnalyst
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	trial := subscription.NewTrial(s.trialLimit)
	_, err := s.db.ExecContext(ctx, `INSERT INTO accounts (email, role, plan, analyses_used, analyses_limit, created_at)
		VALUES (?, ?, ?, 0, ?, ?) ON CONFLICT(email) DO NOTHING`,
		email, string(insertRole), string(trial.Plan), trial.AnalysesLimit, formatTime(time.Now()))
	if err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	if role != "" {
		if _, err := s.db.ExecContext(ctx, `UPDATE accounts SET role = ? WHERE email = ?`, string(role), email); err != nil {
			return Account{}, fmt.Errorf("update role: %w", err)
		}
	}
	return s.getAccount(ctx, s.db, email)
}

func (s *Store) GetAccount(ctx context.Context, email string) (Account, error) {
	return s.getAccount(ctx, s.db, normalizeEmail(email))
}

func (s *Store) getAccount(ctx context.Context, q sqlx.QueryerContext, email string) (Account, error) {
	var row accountRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT email, role, notify_high_risk, plan, analyses_used, analyses_limit, created_at
		FROM accounts WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	return row.account(), nil
}

func (s *Store) SaveSubscription(ctx context.Context, email string, sub subscription.Subscription) error {
	return s.update(ctx, `UPDATE accounts SET plan = ?, analyses_used = ?, analyses_limit = ? WHERE email = ?`,
		string(sub.Plan), sub.AnalysesUsed, sub.AnalysesLimit, normalizeEmail(email))
}

func (s *Store) SaveSettings(ctx context.Context, email string, notifyHighRisk bool) error {
	return s.update(ctx, `UPDATE accounts SET notify_high_risk = ? WHERE email = ?`, notifyHighRisk, normalizeEmail(email))
}

func (s *Store) update(ctx context.Context, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
