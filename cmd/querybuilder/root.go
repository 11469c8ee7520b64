package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"collectionbuilder/querybuilder/pkg/cli"
	"collectionbuilder/querybuilder/pkg/config"
	"collectionbuilder/querybuilder/pkg/query"
	"collectionbuilder/querybuilder/pkg/session"
	"collectionbuilder/querybuilder/pkg/store"
	"collectionbuilder/querybuilder/pkg/telemetry/logging"
	"collectionbuilder/querybuilder/pkg/telemetry/metrics"
	"collectionbuilder/querybuilder/pkg/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

// app holds what a command needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	store   *store.Store
	session *session.Manager
	out     io.Writer
	format  cli.OutputFormat
}

// current is set by the root command before a subcommand runs.
var current *app

var rootCmd = &cobra.Command{
	Use:   "querybuilder",
	Short: "Edit stored boolean search queries",
	Long: `Querybuilder edits named boolean search queries and renders them as
Solr query strings.

A query is a tree of clauses (field:value terms) and clause groups. Clauses
and groups can be negated, deprecated (hidden from the rendered query without
being removed) and joined with AND or OR.

Queries are kept in the configured store: a directory of YAML, JSON or XML
files, a SQLite database or a BoltDB file.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown(cmd.Context())
	},
}

// Execute runs the root command and exits with a status describing the error.
func Execute() {
	ctx, stop := cli.SetupSignalHandler()
	err := execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

// execute runs the command line in rootCmd. Failures of a subcommand are
// reported as a *cli.CommandError naming it.
func execute(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return nil
	}
	teardown(context.Background())
	var configErr *cli.ConfigError
	if cmd == nil || cmd == rootCmd || errors.As(err, &configErr) {
		return err
	}
	return cli.NewCommandError(cmd.Name(), err)
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output-format", "F", "text", "output format: text, json")
}

// setup loads configuration and opens the store for commands that need it.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations["standalone"] == "true" || cmd.Name() == "help" || strings.HasPrefix(cmd.Name(), "__") {
		return nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	a, err := newApp(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	current = a
	return nil
}

// newApp wires logging, metrics, tracing, the store and the session manager.
func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.tracing", err.Error())
	}

	editorOpts := query.WithLogger(logger)
	s, err := store.Open(ctx, cfg.Storage,
		store.WithMetrics(collector),
		store.WithTracer(tracer),
		store.WithLogger(logger),
		store.WithEditorOptions(editorOpts),
	)
	if err != nil {
		tracer.Shutdown(ctx)
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Backend, err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
		tracer:  tracer,
		store:   s,
		session: session.NewManager(s,
			session.WithEditorOptions(editorOpts),
			session.WithMetrics(collector),
			session.WithTracer(tracer),
			session.WithLogger(logger),
		),
		out:    out,
		format: format,
	}, nil
}

// teardown closes the store, writes the metrics textfile and flushes spans.
func teardown(ctx context.Context) error {
	a := current
	if a == nil {
		return nil
	}
	current = nil

	var errs []error
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	if path := a.cfg.Telemetry.Metrics.TextfilePath; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("failed to write metrics textfile", "path", path, "error", err)
		}
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush spans", "error", err)
	}
	return errors.Join(errs...)
}

// print writes a command result in the selected output format.
func (a *app) print(data any) error {
	return cli.NewFormatter(a.format).FormatTo(a.out, data)
}

// printResult reports the query after an edit.
func (a *app) printResult(res session.Result) error {
	if a.format == cli.FormatJSON {
		return a.print(resultView{
			Name:    res.Name,
			Query:   res.Query,
			Nodes:   res.Nodes,
			Created: res.Created,
		})
	}
	return a.print(res.Query)
}

// resultView is the JSON form of an edit result.
type resultView struct {
	Name    string `json:"name"`
	Query   string `json:"query"`
	Nodes   int    `json:"nodes"`
	Created bool   `json:"created,omitempty"`
	NodeID  string `json:"node_id,omitempty"`
}
