package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/finxray/finxray/internal/report"
)

type generateOptions struct {
	inputs report.FounderInputs
	format string
	output string
	strict bool
}

func newGenerateCmd(a *app) *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate [input-file]",
		Short: "Generate a startup report",
		Long: `Generate a startup analysis from founder inputs.

Inputs come from a YAML or JSON file (use "-" for stdin) with the keys
company_name, industry, stage, description, revenue_model, traction, team,
funding and risks. Flags override values read from the file.

Examples:
  finxray generate startup.yaml
  finxray generate startup.json --format json
  finxray generate --company Basket --industry "Grocery delivery" --stage Seed --format terminal`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, o, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.inputs.CompanyName, "company", "", "Company name")
	f.StringVar(&o.inputs.Industry, "industry", "", "Industry")
	f.StringVar(&o.inputs.Stage, "stage", "", "Stage: idea, pre-seed, seed, series a")
	f.StringVar(&o.inputs.Description, "description", "", "What the company does")
	f.StringVar(&o.inputs.RevenueModel, "revenue-model", "", "How the company makes money")
	f.StringVar(&o.inputs.Traction, "traction", "", "Traction so far")
	f.StringVar(&o.inputs.Team, "team", "", "Founding team")
	f.StringVar(&o.inputs.Funding, "funding", "", "Funding and runway")
	f.StringVar(&o.inputs.Risks, "risks", "", "Known risks, one per line")
	f.StringVarP(&o.format, "format", "f", "markdown", "Output format: markdown, json or terminal")
	f.StringVarP(&o.output, "output", "o", "", "Write to this file instead of stdout")
	f.BoolVar(&o.strict, "strict", false, "Reject inputs with missing required fields")
	return cmd
}

var inputFlags = map[string]func(*report.FounderInputs) *string{
	"company":       func(in *report.FounderInputs) *string { return &in.CompanyName },
	"industry":      func(in *report.FounderInputs) *string { return &in.Industry },
	"stage":         func(in *report.FounderInputs) *string { return &in.Stage },
	"description":   func(in *report.FounderInputs) *string { return &in.Description },
	"revenue-model": func(in *report.FounderInputs) *string { return &in.RevenueModel },
	"traction":      func(in *report.FounderInputs) *string { return &in.Traction },
	"team":          func(in *report.FounderInputs) *string { return &in.Team },
	"funding":       func(in *report.FounderInputs) *string { return &in.Funding },
	"risks":         func(in *report.FounderInputs) *string { return &in.Risks },
}

func runGenerate(cmd *cobra.Command, a *app, o *generateOptions, args []string) error {
	in := o.inputs
	if len(args) == 1 {
		fromFile, err := readInputs(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		for name, field := range inputFlags {
			if cmd.Flags().Changed(name) {
				*field(&fromFile) = *field(&o.inputs)
			}
		}
		in = fromFile
	}
	if o.strict {
		if err := in.Validate(); err != nil {
			return err
		}
	}

	r := report.Generate(in)
	a.logger.Debug("report generated",
		zap.String("company", in.CompanyName),
		zap.String("verdict", string(r.Verdict.Label)),
		zap.String("market", string(r.Market.Size)),
	)

	var out string
	switch strings.ToLower(o.format) {
	case "markdown", "md":
		out = report.Markdown(in, r)
	case "json":
		blob, err := json.MarshalIndent(map[string]any{"inputs": in, "report": r}, "", "  ")
		if err != nil {
			return err
		}
		out = string(blob) + "\n"
	case "terminal":
		rendered, err := renderTerminal(in, r)
		if err != nil {
			return err
		}
		out = rendered
	default:
		return fmt.Errorf("unknown format %q (want markdown, json or terminal)", o.format)
	}
	return writeOutput(cmd.OutOrStdout(), o.output, out)
}

// readInputs decodes YAML or JSON by extension; "-" reads YAML (a JSON
// superset) from stdin.
func readInputs(path string, stdin io.Reader) (report.FounderInputs, error) {
	var in report.FounderInputs
	var (
		blob []byte
		err  error
	)
	if path == "-" {
		blob, err = io.ReadAll(stdin)
	} else {
		blob, err = os.ReadFile(path)
	}
	if err != nil {
		return in, fmt.Errorf("read input: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(blob, &in); err != nil {
			return in, fmt.Errorf("decode input JSON: %w", err)
		}
		return in, nil
	}
	if err := yaml.Unmarshal(blob, &in); err != nil {
		return in, fmt.Errorf("decode input YAML: %w", err)
	}
	return in, nil
}

func renderTerminal(in report.FounderInputs, r report.Report) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	body, err := renderer.Render(report.Markdown(in, r))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	header := styleBold.Render(report.Normalize(in.CompanyName)) + "  " + verdictBadge(r.Verdict.Label) +
		"  " + styleMuted.Render("market: "+string(r.Market.Size))
	return header + "\n" + body, nil
}

func writeOutput(stdout io.Writer, path, content string) error {
	if path == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
