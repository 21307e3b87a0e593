package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"salary-import/internal/backend"
	"salary-import/internal/config"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgPath string
	format  string
	verbose bool
	token   string

	cfg    *config.Config
	log    *slog.Logger
	client *backend.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "salaryctl",
		Short: "Check and import piece-rate wage spreadsheets",
		Long: `salaryctl reconciles a wage spreadsheet against the payroll backend's
workers and spec prices, submits the reconciled rows as wage logs, and
exports wage reports.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default $CONFIG_PATH or ./config/local.yaml)")
	root.PersistentFlags().StringVarP(&a.format, "format", "o", formatYAML, "output format: yaml or json")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().StringVar(&a.token, "token", "", "Authorization value sent to the backend (overrides backend.token)")

	root.AddCommand(
		newCheckCmd(a),
		newImportCmd(a),
		newReportCmd(a),
		newVersionCmd(),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.format != formatYAML && a.format != formatJSON {
		return fmt.Errorf("unknown format %q", a.format)
	}

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("cannot read config: %w", err)
	}
	if a.token != "" {
		cfg.Backend.Token = a.token
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.client = backend.New(cfg.Backend)

	return nil
}

func (a *app) print(w io.Writer, v interface{}) error {
	if a.format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
