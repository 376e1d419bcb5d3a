package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/finxray/finxray/internal/subscription"
)

type analysisRow struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	CompanyName string `db:"company_name"`
	Verdict     string `db:"verdict"`
	Inputs      string `db:"inputs"`
	Report      string `db:"report"`
	Commentary  string `db:"commentary"`
	CreatedAt   string `db:"created_at"`
}

const analysisColumns = `a.id, a.email, a.company_name, a.verdict, a.inputs, a.report, a.commentary, a.created_at`

func (r analysisRow) analysis() (Analysis, error) {
	a := Analysis{ID: r.ID, Email: r.Email, Commentary: r.Commentary}
	if err := json.Unmarshal([]byte(r.Inputs), &a.Inputs); err != nil {
		return Analysis{}, fmt.Errorf("decode inputs for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.Report), &a.Report); err != nil {
		return Analysis{}, fmt.Errorf("decode report for %s: %w", r.ID, err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	return a, nil
}

func newAnalysisRow(a *Analysis) (analysisRow, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.Email = normalizeEmail(a.Email)
	inputs, err := json.Marshal(a.Inputs)
	if err != nil {
		return analysisRow{}, fmt.Errorf("encode inputs: %w", err)
	}
	rep, err := json.Marshal(a.Report)
	if err != nil {
		return analysisRow{}, fmt.Errorf("encode report: %w", err)
	}
	return analysisRow{
		ID:          a.ID,
		Email:       a.Email,
		CompanyName: a.Inputs.CompanyName,
		Verdict:     string(a.Report.Verdict.Label),
		Inputs:      string(inputs),
		Report:      string(rep),
		Commentary:  a.Commentary,
		CreatedAt:   formatTime(a.CreatedAt),
	}, nil
}

const insertAnalysis = `INSERT INTO analyses (id, email, company_name, verdict, inputs, report, commentary, created_at)
	VALUES (:id, :email, :company_name, :verdict, :inputs, :report, :commentary, :created_at)`

// SaveAnalysis stores a without touching any quota. Missing ID and
// CreatedAt are filled in.
func (s *Store) SaveAnalysis(ctx context.Context, a *Analysis) error {
	row, err := newAnalysisRow(a)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.NamedExecContext(ctx, insertAnalysis, row); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// RecordAnalysis stores a and charges it to the owner's quota in one
// transaction. It returns subscription.ErrQuotaExhausted without writing
// anything when the owner has no analyses left.
func (s *Store) RecordAnalysis(ctx context.Context, a *Analysis) (sub subscription.Subscription, exhausted bool, err error) {
	row, err := newAnalysisRow(a)
	if err != nil {
		return sub, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return sub, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	acct, err := s.getAccount(ctx, tx, row.Email)
	if err != nil {
		return sub, false, err
	}
	sub = acct.Subscription
	if !sub.CanPerformAnalysis() {
		return sub, true, subscription.ErrQuotaExhausted
	}
	if _, err := tx.NamedExecContext(ctx, insertAnalysis, row); err != nil {
		return sub, false, fmt.Errorf("insert analysis: %w", err)
	}
	exhausted = sub.Consume()
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET analyses_used = ? WHERE email = ?`, sub.AnalysesUsed, row.Email); err != nil {
		return sub, false, fmt.Errorf("update usage: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return sub, false, fmt.Errorf("commit: %w", err)
	}
	return sub, exhausted, nil
}

func (s *Store) GetAnalysis(ctx context.Context, id string) (Analysis, error) {
	var row analysisRow
	err := s.db.GetContext(ctx, &row, `SELECT `+analysisColumns+` FROM analyses a WHERE a.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	if err != nil {
		return Analysis{}, fmt.Errorf("get analysis: %w", err)
	}
	return row.analysis()
}

// ListAnalyses returns the owner's analyses, newest first.
func (s *Store) ListAnalyses(ctx context.Context, email string) ([]Analysis, error) {
	return s.selectAnalyses(ctx, `SELECT `+analysisColumns+` FROM analyses a
		WHERE a.email = ? ORDER BY a.created_at DESC, a.id`, normalizeEmail(email))
}

func (s *Store) selectAnalyses(ctx context.Context, query string, args ...any) ([]Analysis, error) {
	var rows []analysisRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	out := make([]Analysis, 0, len(rows))
	for _, r := range rows {
		a, err := r.analysis()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) SetCommentary(ctx context.Context, id, text string) error {
	return s.update(ctx, `UPDATE analyses SET commentary = ? WHERE id = ?`, text, id)
}

// ToggleWatchlist adds the analysis to the owner's watchlist, or removes it
// when already present. It reports whether the analysis is now listed.
func (s *Store) ToggleWatchlist(ctx context.Context, email, analysisID string) (bool, error) {
	email = normalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.GetContext(ctx, &owner, `SELECT email FROM analyses WHERE id = ?`, analysisID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != email) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("lookup analysis: %w", err)
	}

	listed, err := inWatchlist(ctx, tx, email, analysisID)
	if err != nil {
		return false, err
	}
	if listed {
		_, err = tx.ExecContext(ctx, `DELETE FROM watchlist WHERE email = ? AND analysis_id = ?`, email, analysisID)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO watchlist (email, analysis_id, added_at) VALUES (?, ?, ?)`,
			email, analysisID, formatTime(time.Now()))
	}
	if err != nil {
		return false, fmt.Errorf("toggle watchlist: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return !listed, nil
}

func (s *Store) InWatchlist(ctx context.Context, email, analysisID string) (bool, error) {
	return inWatchlist(ctx, s.db, normalizeEmail(email), analysisID)
}

func inWatchlist(ctx context.Context, q sqlx.QueryerContext, email, analysisID string) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM watchlist WHERE email = ? AND analysis_id = ?`, email, analysisID); err != nil {
		return false, fmt.Errorf("check watchlist: %w", err)
	}
	return n > 0, nil
}

// ListWatchlist returns watched analyses, most recently added first.
func (s *Store) ListWatchlist(ctx context.Context, email string) ([]Analysis, error) {
	return s.selectAnalyses(ctx, `SELECT `+analysisColumns+` FROM watchlist w
		JOIN analyses a ON a.id = w.analysis_id
		WHERE w.email = ? ORDER BY w.added_at DESC, a.id`, normalizeEmail(email))
}
