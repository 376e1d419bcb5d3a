// Package commentary asks a language model for a short analyst note on a
// generated report. The report itself is never modified.
package commentary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/finxray/finxray/internal/report"
)

var errEmptyResponse = errors.New("empty response")

type Writer struct {
	caller         Caller
	logger         *zap.Logger
	maxAttempts    uint
	initialBackoff time.Duration
}

func NewWriter(caller Caller, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{caller: caller, logger: logger, maxAttempts: 3, initialBackoff: time.Second}
}

// Comment returns trimmed commentary for r. Empty replies are retried and
// then reported as an error.
func (w *Writer) Comment(ctx context.Context, in report.FounderInputs, r report.Report) (string, error) {
	if w == nil || w.caller == nil {
		return "", ErrNotConfigured
	}
	prompt := Prompt(in, r)

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = w.initialBackoff
	attempt := 0
	out, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		raw, err := w.caller.Generate(ctx, prompt)
		if err != nil {
			w.logger.Warn("commentary call failed", zap.Int("attempt", attempt), zap.Error(err))
			if !retryable(err) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		text := cleanReply(raw)
		if text == "" {
			w.logger.Warn("commentary reply empty", zap.Int("attempt", attempt))
			return "", errEmptyResponse
		}
		return text, nil
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(w.maxAttempts))
	if err != nil {
		return "", fmt.Errorf("commentary failed after %d attempt(s): %w", attempt, err)
	}
	return out, nil
}

// Prompt embeds the rendered report between markers so the model can tell
// founder text from instructions.
func Prompt(in report.FounderInputs, r report.Report) string {
	var b strings.Builder
	b.WriteString("Below is an automated screen of a startup, generated from founder-supplied text.\n")
	b.WriteString("Comment on what a partner should probe in the first meeting, given the verdict ")
	fmt.Fprintf(&b, "%q and the listed risks.\n\n", r.Verdict.Label)
	b.WriteString("<report>\n")
	b.WriteString(report.Markdown(in, r))
	b.WriteString("</report>\n")
	return b.String()
}

func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if _, rest, ok := strings.Cut(s, "\n"); ok {
			s = rest
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
