// Package httpapi serves the FinXray JSON API, the static web UI and PDF
// exports of stored reports.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/finxray/finxray/internal/dashboard"
	"github.com/finxray/finxray/internal/report"
	"github.com/finxray/finxray/internal/store"
)

// UserHeader carries the caller's account email on every /api request
// except login.
const UserHeader = "X-User-Email"

const maxJSONBody = 1 << 20

var tracer = otel.Tracer("github.com/finxray/finxray/internal/httpapi")

type ReportPDFRenderer interface {
	Render(ctx context.Context, doc PDFDocument) ([]byte, error)
}

type Commenter interface {
	Comment(ctx context.Context, in report.FounderInputs, r report.Report) (string, error)
}

type DashboardUploader interface {
	UploadForDashboard(ctx context.Context, filename string, r io.Reader) (dashboard.Data, error)
}

// Options wires the server. Commenter, Dashboard and PDFRenderer are
// optional; their endpoints answer 503 when unset.
type Options struct {
	Store       *store.Store
	Commenter   Commenter
	Dashboard   DashboardUploader
	PDFRenderer ReportPDFRenderer
	WebDir      string
	Version     string
	Logger      *zap.Logger
}

type Server struct {
	store       *store.Store
	commenter   Commenter
	dashboard   DashboardUploader
	pdfRenderer ReportPDFRenderer
	webDir      string
	version     string
	logger      *zap.Logger
}

func NewServer(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:       opts.Store,
		commenter:   opts.Commenter,
		dashboard:   opts.Dashboard,
		pdfRenderer: opts.PDFRenderer,
		webDir:      opts.WebDir,
		version:     opts.Version,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/subscription", s.handleSubscription)
	mux.HandleFunc("POST /api/subscription/upgrade", s.handleUpgrade)
	mux.HandleFunc("PUT /api/settings", s.handleSettings)
	mux.HandleFunc("POST /api/reports", s.handleCreateReport)
	mux.HandleFunc("GET /api/reports", s.handleListReports)
	mux.HandleFunc("GET /api/reports/{id}", s.handleGetReport)
	mux.HandleFunc("GET /api/reports/{id}/markdown", s.handleReportMarkdown)
	mux.HandleFunc("GET /api/reports/{id}/pdf", s.handleReportPDF)
	mux.HandleFunc("POST /api/reports/{id}/commentary", s.handleCommentary)
	mux.HandleFunc("POST /api/watchlist/{id}", s.handleToggleWatchlist)
	mux.HandleFunc("GET /api/watchlist", s.handleListWatchlist)
	mux.HandleFunc("POST /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /", s.handleRoot)
	return s.instrument(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps every request in a span and one access log line.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		span.SetAttributes(attribute.String("http.request_id", reqID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		if rec.status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", reqID),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// Prevent stale frontend bundles from breaking the UI after deploys.
	w.Header().Set("Cache-Control", "no-store")
	if r.URL.Path == "/" || r.URL.Path == "/index.html" {
		http.ServeFile(w, r, filepath.Join(s.webDir, "index.html"))
		return
	}
	name := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
	if strings.HasPrefix(name, "api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if st, err := fs.Stat(os.DirFS(s.webDir), name); err == nil && !st.IsDir() {
		http.ServeFile(w, r, filepath.Join(s.webDir, name))
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"version":    s.version,
		"commentary": s.commenter != nil,
		"dashboard":  s.dashboard != nil,
		"pdf":        s.pdfRenderer != nil,
	})
}

// account resolves the caller from UserHeader. It writes 401 and returns
// false when the header is missing or names an unknown account.
func (s *Server) account(w http.ResponseWriter, r *http.Request) (store.Account, bool) {
	email := strings.TrimSpace(r.Header.Get(UserHeader))
	if email == "" {
		writeError(w, http.StatusUnauthorized, UserHeader+" header is required")
		return store.Account{}, false
	}
	acct, err := s.store.GetAccount(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "unknown account; log in first")
		return store.Account{}, false
	}
	if err != nil {
		s.logger.Error("load account", zap.String("email", email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return store.Account{}, false
	}
	return acct, true
}
