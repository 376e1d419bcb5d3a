package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	dashboardPath = "/api/upload/dashboard"
	analyzePath   = "/api/analyze"

	// MaxUploadBytes caps the document size forwarded to the backend.
	MaxUploadBytes = 32 << 20
)

var tracer = otel.Tracer("github.com/finxray/finxray/internal/dashboard")

// StatusError is returned when the backend answers with a non-retryable status.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("POST %s failed status=%d body=%s", e.Path, e.StatusCode, e.Body)
}

type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts uint
	// InitialBackoff overrides the first retry delay; tests set it low.
	InitialBackoff time.Duration
}

// Client uploads startup documents to the analysis backend.
type Client struct {
	baseURL        string
	http           *http.Client
	maxAttempts    uint
	initialBackoff time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           &http.Client{Timeout: cfg.Timeout},
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
	}
}

// UploadForDashboard sends a document to the dashboard endpoint and decodes
// the full dashboard payload.
func (c *Client) UploadForDashboard(ctx context.Context, filename string, r io.Reader) (Data, error) {
	var out Data
	blob, err := c.upload(ctx, dashboardPath, filename, r)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(blob, &out); err != nil {
		return out, fmt.Errorf("decode dashboard response: %w", err)
	}
	return out, nil
}

// Analyze sends a document to the single-document analyze endpoint.
func (c *Client) Analyze(ctx context.Context, filename string, r io.Reader) (DocumentAnalysis, error) {
	var resp struct {
		Analysis *DocumentAnalysis `json:"analysis"`
	}
	blob, err := c.upload(ctx, analyzePath, filename, r)
	if err != nil {
		return DocumentAnalysis{}, err
	}
	if err := json.Unmarshal(blob, &resp); err != nil {
		return DocumentAnalysis{}, fmt.Errorf("decode analyze response: %w", err)
	}
	if resp.Analysis == nil {
		return DocumentAnalysis{}, errors.New("analyze response missing analysis object")
	}
	return *resp.Analysis, nil
}

func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "dashboard.upload")
	defer span.End()
	span.SetAttributes(attribute.String("backend.path", path), attribute.String("file.name", filename))

	if c.baseURL == "" {
		return nil, errors.New("dashboard backend URL not configured")
	}
	content, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(content) > MaxUploadBytes {
		return nil, fmt.Errorf("upload exceeds %d bytes", MaxUploadBytes)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialBackoff
	attempts := 0
	blob, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempts++
		return c.post(ctx, path, filename, content)
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(c.maxAttempts))
	span.SetAttributes(attribute.Int("backend.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return blob, nil
}

func (c *Client) post(ctx context.Context, path, filename string, content []byte) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, backoff.Permanent(err)
	}
	if err := mw.Close(); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		// Network errors are worth another attempt unless the caller gave up.
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()
	blob, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		serr := &StatusError{Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(blob))}
		if retryableStatus(resp.StatusCode) {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}
	return blob, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
