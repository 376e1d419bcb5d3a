package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finxray/finxray/internal/config"
	"github.com/finxray/finxray/internal/logging"
)

// app holds state shared by subcommands once PersistentPreRunE has run.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	logLevel string
	logJSON  bool
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:   "finxray",
		Short: "FinXray - rule-based first-pass startup screening",
		Long: `FinXray turns founder-supplied text into a structured startup analysis:
snapshot, strengths, risks, market size, viability, next steps and an
Invest / Watch / Avoid verdict.

Commands:
  generate    Generate a report from a YAML/JSON file or flags
  dashboard   Upload a document to the analysis backend and summarize it
  serve       Run the HTTP API and web UI
  version     Show version info

Configuration is read from FINXRAY_* environment variables and an optional
.env file; flags override both.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.cfg = config.Load()
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				a.cfg.LogLevel = a.logLevel
			}
			if flags.Changed("log-json") {
				a.cfg.LogJSON = a.logJSON
			}
			if err := a.applyFlags(cmd); err != nil {
				return err
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			logger, err := logging.New(a.cfg.LogLevel, a.cfg.LogJSON)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", true, "Emit JSON logs (false for console output)")

	root.AddCommand(
		newServeCmd(a),
		newGenerateCmd(a),
		newDashboardCmd(a),
		newVersionCmd(),
	)
	return root
}

// applyFlags copies command-local flags that shadow config keys.
func (a *app) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	str := func(name string, dst *string) error {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			return nil
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	for name, dst := range map[string]*string{
		"addr":        &a.cfg.Addr,
		"db":          &a.cfg.DBPath,
		"web-dir":     &a.cfg.WebDir,
		"backend-url": &a.cfg.BackendURL,
	} {
		if err := str(name, dst); err != nil {
			return err
		}
	}
	if flags.Lookup("trial-limit") != nil && flags.Changed("trial-limit") {
		n, err := flags.GetInt("trial-limit")
		if err != nil {
			return err
		}
		a.cfg.TrialLimit = n
	}
	return nil
}
