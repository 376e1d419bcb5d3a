package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return NewClient(ClientConfig{BaseURL: url, MaxAttempts: 3, InitialBackoff: time.Millisecond})
}

func TestUploadForDashboardRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload/dashboard" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(file)
		if header.Filename != "deck.pdf" || string(body) != "pdf-bytes" {
			t.Errorf("unexpected upload %s %q", header.Filename, body)
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"company_name":"Basket","overall_risk_score":45,"financial_metrics":{"revenue":1000,"runway_months":10}}`)
	}))
	defer srv.Close()

	data, err := newTestClient(srv.URL).UploadForDashboard(context.Background(), "deck.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("UploadForDashboard: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if data.CompanyName != "Basket" || data.OverallRiskScore != 45 || data.FinancialMetrics.RunwayMonths != 10 {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestUploadForDashboardDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, "unsupported file")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).UploadForDashboard(context.Background(), "notes.txt", strings.NewReader("x"))
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if serr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", serr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestUploadGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).UploadForDashboard(context.Background(), "deck.pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestAnalyzeDecodesAnalysisObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analyze" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"analysis":{"revenue":120,"expenses":80,"profit":40,"red_flags":["late filings"],"market_comparison":{"peer_median":"1.2x"}}}`)
	}))
	defer srv.Close()

	a, err := newTestClient(srv.URL).Analyze(context.Background(), "mca.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Profit != 40 || len(a.RedFlags) != 1 || a.MarketComparison["peer_median"] != "1.2x" {
		t.Fatalf("unexpected analysis: %+v", a)
	}
}

func TestAnalyzeMissingAnalysisObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Analyze(context.Background(), "mca.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for missing analysis object")
	}
}

func TestUploadWithoutBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}).UploadForDashboard(context.Background(), "a", strings.NewReader("x")); err == nil {
		t.Fatal("expected error without base URL")
	}
}

func TestUploadForDashboardAcceptsFractionalRiskScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"company_name":"Basket","overall_risk_score":72.5}`)
	}))
	defer srv.Close()

	data, err := newTestClient(srv.URL).UploadForDashboard(context.Background(), "deck.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("UploadForDashboard: %v", err)
	}
	if data.OverallRiskScore != 72.5 {
		t.Fatalf("expected raw score 72.5, got %v", data.OverallRiskScore)
	}
	s := Summarize(data)
	if s.RiskScore != 72 || s.RiskBand != RiskHigh {
		t.Fatalf("expected gauge 72/high, got %d/%s", s.RiskScore, s.RiskBand)
	}
}
