package httpapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/finxray/finxray/internal/report"
	"github.com/finxray/finxray/internal/store"
)

type PDFMeta struct {
	Label string
	Value string
}

// PDFDocument is everything the renderer prints: markdown body, a header of
// label/value pairs and a verdict badge.
type PDFDocument struct {
	Title    string
	Markdown string
	Meta     []PDFMeta
	Verdict  report.VerdictLabel
}

func documentFor(a store.Analysis) PDFDocument {
	title := strings.TrimSpace(a.Inputs.CompanyName)
	if title == "" {
		title = "Startup Analysis"
	}
	doc := PDFDocument{
		Title:    title,
		Markdown: analysisMarkdown(a),
		Verdict:  a.Report.Verdict.Label,
		Meta: []PDFMeta{
			{Label: "Company", Value: a.Inputs.CompanyName},
			{Label: "Industry", Value: a.Inputs.Industry},
			{Label: "Stage", Value: a.Inputs.Stage},
		},
	}
	if !a.CreatedAt.IsZero() {
		doc.Meta = append(doc.Meta, PDFMeta{Label: "Date", Value: a.CreatedAt.In(time.Local).Format("January 2, 2006 at 3:04 PM MST")})
	}
	return doc
}

type ChromiumPDFRenderer struct {
	webDir     string
	chromePath string
	timeout    time.Duration
	styleOnce  sync.Once
	styleCSS   string
	styleErr   error
}

func NewChromiumPDFRenderer(webDir string) *ChromiumPDFRenderer {
	return &ChromiumPDFRenderer{
		webDir:     webDir,
		chromePath: detectChromePath(),
		timeout:    30 * time.Second,
	}
}

func (r *ChromiumPDFRenderer) Render(ctx context.Context, doc PDFDocument) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "pdf.render")
	defer span.End()

	htmlDoc, err := r.buildHTML(doc)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			footer := `<div style="width:100%;text-align:center;font-size:9px;color:#666;">` +
				`FinXray · Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div></div>`).
				WithFooterTemplate(footer).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.75).
				WithMarginLeft(0.5).
				WithMarginRight(0.5).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

func (r *ChromiumPDFRenderer) buildHTML(doc PDFDocument) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(doc.Markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	contentHTML := applyPrintLayoutHooks(content.String())

	styleCSS, err := r.loadStyleCSS()
	if err != nil {
		return "", err
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(doc.Title) + "</title>" +
		"<style>" + styleCSS + "\n" +
		"html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;} " +
		"body{background:#fff !important;padding:0.6rem;} .pdf-wrap{max-width:1000px;margin:0 auto;} " +
		".report-meta{color:#334155 !important;font-size:0.85rem;} .report-meta strong{color:#0f172a !important;} " +
		".verdict-badge{display:inline-block;padding:0.2rem 0.6rem;border-radius:999px;font-weight:700;} " +
		".verdict-invest{background:#dcfce7 !important;color:#166534 !important;} " +
		".verdict-watch{background:#fef3c7 !important;color:#92400e !important;} " +
		".verdict-avoid{background:#fee2e2 !important;color:#991b1b !important;} " +
		".report-html table{width:100% !important;border-collapse:collapse !important;border:1px solid #cbd5e1 !important;font-size:0.8rem !important;} " +
		".report-html th,.report-html td{border:1px solid #cbd5e1 !important;padding:0.35rem 0.45rem !important;text-align:left !important;vertical-align:top !important;} " +
		".report-html thead th{background:#f1f5f9 !important;font-weight:700 !important;} " +
		`h2[data-verdict-heading="true"]{border-top:2px solid #0f172a;padding-top:0.4rem;} ` +
		`h2[data-page-break-before="true"]{break-before:page;page-break-before:always;} ` +
		"@media print{ @page{size:auto;margin:12mm;} body{padding:0;} .pdf-wrap{max-width:none;} }" +
		"</style></head><body>" +
		"<div class='pdf-wrap'><section class='report-viewer'><div class='report-header'>" +
		"<div class='report-meta'>" + buildMetaHTML(doc.Meta) + "</div>" +
		"<div class='report-badges'>" + buildBadgeHTML(doc.Verdict) + "</div>" +
		"</div><div class='report-html'>" + contentHTML + "</div></section></div>" +
		"</body></html>", nil
}

var (
	reCommentaryHeading = regexp.MustCompile(`(?i)<h2([^>]*)>\s*Analyst Commentary\s*</h2>`)
	reVerdictHeading    = regexp.MustCompile(`(?i)<h2([^>]*)>\s*Verdict\s*</h2>`)
)

func applyPrintLayoutHooks(contentHTML string) string {
	out := reCommentaryHeading.ReplaceAllString(contentHTML, `<h2$1 data-page-break-before="true">Analyst Commentary</h2>`)
	return reVerdictHeading.ReplaceAllString(out, `<h2$1 data-verdict-heading="true">Verdict</h2>`)
}

func (r *ChromiumPDFRenderer) loadStyleCSS() (string, error) {
	r.styleOnce.Do(func() {
		b, err := os.ReadFile(filepath.Join(r.webDir, "style.css"))
		if err != nil {
			r.styleErr = fmt.Errorf("read style.css: %w", err)
			return
		}
		r.styleCSS = string(b)
	})
	return r.styleCSS, r.styleErr
}

func buildMetaHTML(meta []PDFMeta) string {
	var out strings.Builder
	for _, m := range meta {
		v := strings.TrimSpace(m.Value)
		if v == "" {
			continue
		}
		out.WriteString("<div><strong>" + html.EscapeString(m.Label) + ":</strong> " + html.EscapeString(v) + "</div>")
	}
	return out.String()
}

func buildBadgeHTML(label report.VerdictLabel) string {
	if label == "" {
		return ""
	}
	class := "verdict-" + strings.ToLower(string(label))
	return "<span class='verdict-badge " + class + "'>" + html.EscapeString(string(label)) + "</span>"
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
