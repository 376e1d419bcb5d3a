package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finxray/finxray/internal/report"
	"github.com/finxray/finxray/internal/store"
	"github.com/finxray/finxray/internal/subscription"
)

type analysisSummary struct {
	ID          string              `json:"id"`
	CompanyName string              `json:"company_name"`
	Industry    string              `json:"industry"`
	Stage       string              `json:"stage"`
	Verdict     report.VerdictLabel `json:"verdict"`
	Market      report.MarketSize   `json:"market"`
	Watchlisted bool                `json:"watchlisted"`
	CreatedAt   time.Time           `json:"created_at"`
}

func summarize(a store.Analysis, watchlisted bool) analysisSummary {
	return analysisSummary{
		ID:          a.ID,
		CompanyName: a.Inputs.CompanyName,
		Industry:    a.Inputs.Industry,
		Stage:       a.Inputs.Stage,
		Verdict:     a.Report.Verdict.Label,
		Market:      a.Report.Market.Size,
		Watchlisted: watchlisted,
		CreatedAt:   a.CreatedAt,
	}
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	var in report.FounderInputs
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !acct.Subscription.CanPerformAnalysis() {
		writeError(w, http.StatusPaymentRequired, subscription.ErrQuotaExhausted.Error())
		return
	}

	a := &store.Analysis{Email: acct.Email, Inputs: in, Report: report.Generate(in)}
	sub, exhausted, err := s.store.RecordAnalysis(r.Context(), a)
	if errors.Is(err, subscription.ErrQuotaExhausted) {
		writeError(w, http.StatusPaymentRequired, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("record analysis", zap.String("email", acct.Email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save analysis")
		return
	}

	alert := acct.NotifyHighRisk && a.Report.Verdict.Label == report.VerdictAvoid
	s.logger.Info("analysis generated",
		zap.String("id", a.ID),
		zap.String("email", acct.Email),
		zap.String("company", a.Inputs.CompanyName),
		zap.String("verdict", string(a.Report.Verdict.Label)),
		zap.Bool("trial_exhausted", exhausted),
	)
	if alert {
		s.logger.Warn("high risk analysis", zap.String("id", a.ID), zap.String("email", acct.Email))
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":              a.ID,
		"report":          a.Report,
		"subscription":    sub.Status(),
		"trial_exhausted": exhausted,
		"high_risk_alert": alert,
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	analyses, err := s.store.ListAnalyses(r.Context(), acct.Email)
	if err != nil {
		s.logger.Error("list analyses", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	watched, err := s.store.ListWatchlist(r.Context(), acct.Email)
	if err != nil {
		s.logger.Error("list watchlist", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	inList := make(map[string]bool, len(watched))
	for _, a := range watched {
		inList[a.ID] = true
	}
	out := make([]analysisSummary, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, summarize(a, inList[a.ID]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

// ownedAnalysis loads {id} and hides other accounts' analyses behind 404.
func (s *Server) ownedAnalysis(w http.ResponseWriter, r *http.Request, acct store.Account) (store.Analysis, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	a, err := s.store.GetAnalysis(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && a.Email != acct.Email) {
		writeError(w, http.StatusNotFound, "report not found")
		return store.Analysis{}, false
	}
	if err != nil {
		s.logger.Error("get analysis", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return store.Analysis{}, false
	}
	return a, true
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	a, ok := s.ownedAnalysis(w, r, acct)
	if !ok {
		return
	}
	watchlisted, err := s.store.InWatchlist(r.Context(), acct.Email, a.ID)
	if err != nil {
		s.logger.Error("check watchlist", zap.String("id", a.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis":    a,
		"watchlisted": watchlisted,
	})
}

// analysisMarkdown is the rendered report plus any stored commentary.
func analysisMarkdown(a store.Analysis) string {
	md := report.Markdown(a.Inputs, a.Report)
	if c := strings.TrimSpace(a.Commentary); c != "" {
		md += "\n## Analyst Commentary\n\n" + c + "\n"
	}
	return md
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	a, ok := s.ownedAnalysis(w, r, acct)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(analysisMarkdown(a)))
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if s.pdfRenderer == nil {
		writeError(w, http.StatusServiceUnavailable, "pdf renderer unavailable")
		return
	}
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	a, ok := s.ownedAnalysis(w, r, acct)
	if !ok {
		return
	}
	pdf, err := s.pdfRenderer.Render(r.Context(), documentFor(a))
	if err != nil {
		s.logger.Error("render report pdf failed", zap.String("id", a.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render pdf")
		return
	}
	filename := fmt.Sprintf("%s-analysis.pdf", sanitizeFilename(a.Inputs.CompanyName))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleCommentary(w http.ResponseWriter, r *http.Request) {
	if s.commenter == nil {
		writeError(w, http.StatusServiceUnavailable, "commentary unavailable; ANTHROPIC_API_KEY not configured")
		return
	}
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	a, ok := s.ownedAnalysis(w, r, acct)
	if !ok {
		return
	}
	text, err := s.commenter.Comment(r.Context(), a.Inputs, a.Report)
	if err != nil {
		s.logger.Error("generate commentary", zap.String("id", a.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "commentary generation failed")
		return
	}
	if err := s.store.SetCommentary(r.Context(), a.ID, text); err != nil {
		s.logger.Error("save commentary", zap.String("id", a.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save commentary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": a.ID, "commentary": text})
}

func (s *Server) handleToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	listed, err := s.store.ToggleWatchlist(r.Context(), acct.Email, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.logger.Error("toggle watchlist", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update watchlist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "watchlisted": listed})
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.account(w, r)
	if !ok {
		return
	}
	watched, err := s.store.ListWatchlist(r.Context(), acct.Email)
	if err != nil {
		s.logger.Error("list watchlist", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list watchlist")
		return
	}
	out := make([]analysisSummary, 0, len(watched))
	for _, a := range watched {
		out = append(out, summarize(a, true))
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

func sanitizeFilename(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "report"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, v)
}
