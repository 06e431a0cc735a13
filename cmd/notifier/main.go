package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"IndexNotifier/internal/collector"
	"IndexNotifier/internal/config"
	"IndexNotifier/internal/logger"
	"IndexNotifier/internal/model"
	"IndexNotifier/internal/notifier"
	"IndexNotifier/internal/pipeline"
	"IndexNotifier/internal/scheduler"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
	dryRun     bool
	showGraph  bool
	showData   bool
	schedule   string
}

// app holds the collaborators the command builds, so tests can swap them.
type app struct {
	newFetcher func(cfg *config.Config) collector.Fetcher
	newSink    func(cfg *config.Config, log *slog.Logger) pipeline.Sink
	openFile   func(path string) error
	stdout     io.Writer
	stderr     io.Writer
}

func defaultApp() *app {
	return &app{
		newFetcher: func(cfg *config.Config) collector.Fetcher {
			if cfg.DataSource.BaseURL != "" {
				return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
			}
			return collector.NewYahooFetcher(cfg.Proxy)
		},
		newSink: func(cfg *config.Config, log *slog.Logger) pipeline.Sink {
			return notifier.NewPushoverNotifier(cfg.Pushover.User, cfg.Pushover.Token, cfg.Proxy, log)
		},
		openFile: browser.OpenFile,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

func newRootCmd(a *app) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "notifier",
		Short: "Send a moving average report for stock indices via Pushover",
		Long: "notifier fetches daily prices for the configured indices, computes simple moving averages\n" +
			"and the distance of the close from each, and pushes a summary with a chart of the main index.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "config.ini", "path to the configuration file (.ini, .yaml)")
	f.BoolVar(&opts.verbose, "verbose", false, "log progress at info level")
	f.BoolVar(&opts.dryRun, "dry-run", false, "do everything except sending the notification")
	f.BoolVar(&opts.showGraph, "show-graph", false, "open the chart in the desktop image viewer")
	f.BoolVar(&opts.showData, "show-data", false, "print the computed price table")
	f.StringVar(&opts.schedule, "schedule", "", "cron expression; keep running and notify on every tick")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(defaultApp()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, opts options) error {
	log := logger.NewWithWriter(a.stderr, opts.verbose)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !opts.dryRun {
		if err := cfg.ValidateDelivery(); err != nil {
			return err
		}
	}
	schedule := cfg.Schedule
	if opts.schedule != "" {
		schedule = opts.schedule
	}
	if schedule != "" {
		if err := scheduler.ValidateSpec(schedule); err != nil {
			return fmt.Errorf("%w: %w", model.ErrConfiguration, err)
		}
	}

	fetcher := a.newFetcher(cfg)
	log.Info("config loaded", "path", cfg.Path, "symbols", len(cfg.Symbols()), "source", fetcher.Name())

	var sink pipeline.Sink
	if !opts.dryRun {
		sink = a.newSink(cfg, log)
	}
	p, err := pipeline.New(cfg, fetcher, sink, pipeline.WithDryRun(opts.dryRun), pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	if schedule != "" {
		if opts.showData || opts.showGraph {
			log.Warn("--show-data and --show-graph are ignored in scheduled mode")
		}
		return serve(ctx, p, schedule, log)
	}

	rep, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if opts.showData {
		printData(a.stdout, rep)
	}
	if opts.showGraph {
		return a.showGraph(rep.Chart)
	}
	return nil
}

// serve runs the pipeline on every tick until ctx is cancelled.
func serve(ctx context.Context, p *pipeline.Pipeline, schedule string, log *slog.Logger) error {
	sched := scheduler.NewScheduler(ctx, p, log)
	if err := sched.Register(schedule); err != nil {
		return fmt.Errorf("%w: %w", model.ErrConfiguration, err)
	}
	sched.Start()
	log.Info("notifier is running, press Ctrl+C to stop", "schedule", schedule)

	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
	sched.Stop()
	return nil
}
