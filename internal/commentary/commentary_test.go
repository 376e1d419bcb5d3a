package commentary

import (
	"context"
	"errors"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/finxray/finxray/internal/report"
)

type scriptedCaller struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *scriptedCaller) Generate(_ context.Context, prompt string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return reply, err
}

func testWriter(c Caller) *Writer {
	w := NewWriter(c, nil)
	w.initialBackoff = 1
	return w
}

func sample() (report.FounderInputs, report.Report) {
	in := report.FounderInputs{
		CompanyName:  "Basket",
		Industry:     "Grocery delivery",
		Stage:        "Seed",
		Description:  "Same-day grocery delivery for small towns.",
		RevenueModel: "Delivery fee",
		Traction:     "$40k MRR",
		Team:         "Two ops founders",
	}
	return in, report.Generate(in)
}

func TestCommentTrimsReply(t *testing.T) {
	c := &scriptedCaller{replies: []string{"\n  Probe unit economics first.  \n"}}
	in, r := sample()
	got, err := testWriter(c).Comment(context.Background(), in, r)
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if got != "Probe unit economics first." {
		t.Fatalf("unexpected commentary %q", got)
	}
	if len(c.prompts) != 1 {
		t.Fatalf("expected one call, got %d", len(c.prompts))
	}
	if !strings.Contains(c.prompts[0], "# Basket: Startup Analysis") {
		t.Fatalf("prompt should embed the rendered report: %q", c.prompts[0])
	}
}

func TestCommentRetriesEmptyReply(t *testing.T) {
	c := &scriptedCaller{replies: []string{"  ", "Second try."}}
	in, r := sample()
	got, err := testWriter(c).Comment(context.Background(), in, r)
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if got != "Second try." || len(c.prompts) != 2 {
		t.Fatalf("got %q after %d calls", got, len(c.prompts))
	}
}

func TestCommentRejectsPersistentEmptyReply(t *testing.T) {
	c := &scriptedCaller{}
	in, r := sample()
	_, err := testWriter(c).Comment(context.Background(), in, r)
	if !errors.Is(err, errEmptyResponse) {
		t.Fatalf("expected empty response error, got %v", err)
	}
	if len(c.prompts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(c.prompts))
	}
}

func TestCommentStopsOnCanceledContext(t *testing.T) {
	c := &scriptedCaller{errs: []error{context.Canceled}}
	in, r := sample()
	_, err := testWriter(c).Comment(context.Background(), in, r)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if len(c.prompts) != 1 {
		t.Fatalf("canceled call must not be retried, got %d calls", len(c.prompts))
	}
}

func TestCommentWithoutCaller(t *testing.T) {
	in, r := sample()
	var w *Writer
	if _, err := w.Comment(context.Background(), in, r); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"rate limit", &anthropic.Error{StatusCode: 429}, true},
		{"server", &anthropic.Error{StatusCode: 529}, true},
		{"bad request", &anthropic.Error{StatusCode: 400}, false},
		{"unknown", errors.New("connection reset"), true},
	} {
		if got := retryable(tc.err); got != tc.want {
			t.Fatalf("%s: retryable=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCleanReplyStripsFences(t *testing.T) {
	if got := cleanReply("```text\nHello\n```"); got != "Hello" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := cleanReply("  plain  "); got != "plain" {
		t.Fatalf("unexpected: %q", got)
	}
}

type fakeMessager struct {
	params anthropic.MessageNewParams
}

func (f *fakeMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = params
	return &anthropic.Message{Content: []anthropic.ContentBlockUnion{
		{Type: "text", Text: "Part one. "},
		{Type: "tool_use"},
		{Type: "text", Text: "Part two."},
	}}, nil
}

func TestAnthropicCallerJoinsTextBlocks(t *testing.T) {
	fake := &fakeMessager{}
	orig := newAnthropicClient
	newAnthropicClient = func(string) AnthropicMessager { return fake }
	t.Cleanup(func() { newAnthropicClient = orig })

	caller, err := NewAnthropicCaller(" key ")
	if err != nil {
		t.Fatalf("new caller: %v", err)
	}
	got, err := caller.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "Part one. Part two." {
		t.Fatalf("unexpected text %q", got)
	}
	if len(fake.params.Messages) != 1 || fake.params.MaxTokens != 1024 {
		t.Fatalf("unexpected params: %+v", fake.params)
	}
}

func TestNewAnthropicCallerRequiresKey(t *testing.T) {
	if _, err := NewAnthropicCaller("  "); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
