package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finxray/finxray/internal/dashboard"
)

func newDashboardCmd(a *app) *cobra.Command {
	var (
		format  string
		analyze bool
	)
	cmd := &cobra.Command{
		Use:   "dashboard <document>",
		Short: "Upload a startup document to the analysis backend",
		Long: `Upload a pitch deck or financial document to the analysis backend and
print the dashboard summary: risk score, projected ARR, runway alert,
funding history and executive summary.

With --analyze the single-document analyze endpoint is used instead and
its KPI scores and red flags are printed.

Requires FINXRAY_BACKEND_URL or --backend-url.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.BackendURL == "" {
				return errors.New("backend URL not configured; set FINXRAY_BACKEND_URL or --backend-url")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open document: %w", err)
			}
			defer f.Close()

			client := dashboard.NewClient(dashboard.ClientConfig{BaseURL: a.cfg.BackendURL, Timeout: a.cfg.BackendTimeout})
			name := filepath.Base(args[0])
			out := cmd.OutOrStdout()

			if analyze {
				res, err := client.Analyze(cmd.Context(), name, f)
				if err != nil {
					return err
				}
				a.logger.Info("document analyzed", zap.String("file", name), zap.Int("red_flags", len(res.RedFlags)))
				if format == "json" {
					return writeJSONTo(out, res)
				}
				_, err = fmt.Fprint(out, formatAnalysis(res))
				return err
			}

			data, err := client.UploadForDashboard(cmd.Context(), name, f)
			if err != nil {
				return err
			}
			summary := dashboard.Summarize(data)
			a.logger.Info("dashboard fetched", zap.String("file", name), zap.Int("risk_score", summary.RiskScore))
			switch format {
			case "json":
				return writeJSONTo(out, map[string]any{"data": data, "summary": summary})
			case "markdown":
				_, err = fmt.Fprint(out, dashboard.Markdown(data))
			default:
				_, err = fmt.Fprint(out, formatSummary(summary))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "terminal", "Output format: terminal, markdown or json")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "Use the single-document analyze endpoint")
	cmd.Flags().String("backend-url", "", "Analysis backend base URL (overrides FINXRAY_BACKEND_URL)")
	return cmd
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatSummary(s dashboard.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n\n", styleBold.Render(s.CompanyName), riskBadge(s.RiskBand),
		styleMuted.Render(fmt.Sprintf("score %d/100", s.RiskScore)))
	fmt.Fprintf(&b, "  Projected ARR:   %s\n", humanize.Comma(int64(s.ProjectedARR)))
	runway := humanize.FtoaWithDigits(s.RunwayMonths, 1) + " months"
	if s.RunwayCritical {
		runway = badge(runway, colorError)
	}
	fmt.Fprintf(&b, "  Runway:          %s\n", runway)
	fmt.Fprintf(&b, "  Funding raised:  %s\n", humanize.Comma(int64(s.FundingRaised)))
	fmt.Fprintf(&b, "  Rounds total:    %s\n", humanize.Comma(int64(s.RoundsTotal)))
	if s.HighRisk {
		fmt.Fprintf(&b, "\n  %s\n", badge("Recommendation flagged HIGH RISK", colorError))
	}
	return b.String()
}

func formatAnalysis(d dashboard.DocumentAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", styleBold.Render("Document analysis"))
	fmt.Fprintf(&b, "  Revenue:        %s\n", humanize.Comma(int64(d.Revenue)))
	fmt.Fprintf(&b, "  Expenses:       %s\n", humanize.Comma(int64(d.Expenses)))
	fmt.Fprintf(&b, "  Profit:         %s\n", humanize.Comma(int64(d.Profit)))
	fmt.Fprintf(&b, "  Valuation:      %s\n", humanize.Comma(int64(d.Valuation)))
	fmt.Fprintf(&b, "  AI KPI score:   %s\n", humanize.FtoaWithDigits(d.AIKPIScore, 1))
	fmt.Fprintf(&b, "  Financial KPI:  %s\n", humanize.FtoaWithDigits(d.FinancialKPIScore, 1))
	if len(d.RedFlags) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", badge(fmt.Sprintf("%d red flag(s)", len(d.RedFlags)), colorError))
		for _, f := range d.RedFlags {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	return b.String()
}
