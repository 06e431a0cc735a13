// Package pipeline runs one notification cycle: fetch, compute, chart, format, deliver.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"IndexNotifier/internal/calculator"
	"IndexNotifier/internal/chart"
	"IndexNotifier/internal/collector"
	"IndexNotifier/internal/config"
	"IndexNotifier/internal/logger"
	"IndexNotifier/internal/metrics"
	"IndexNotifier/internal/model"
	"IndexNotifier/internal/notifier"

	"github.com/google/uuid"
)

// Sink delivers a rendered message with its chart.
type Sink interface {
	Send(ctx context.Context, message string, image io.Reader) error
}

// Report describes the outcome of a run.
type Report struct {
	RunID     string
	Symbols   []*model.Symbol // main symbol first
	Windows   []int
	Message   string
	Chart     []byte // PNG of the main symbol
	Delivered bool
}

// Pipeline wires the components of a run together. It holds no state between runs.
type Pipeline struct {
	cfg       *config.Config
	fetcher   collector.Fetcher
	sink      Sink
	formatter *notifier.Formatter
	chartOpts chart.Options
	dryRun    bool
	log       *slog.Logger
	now       func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithDryRun skips delivery; everything else still runs.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) { p.dryRun = dryRun }
}

// WithFormatter overrides the formatter built from the configured template.
func WithFormatter(f *notifier.Formatter) Option {
	return func(p *Pipeline) { p.formatter = f }
}

// WithLogger sets the base logger; each run adds its run_id.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithChartOptions sets the chart image size.
func WithChartOptions(opts chart.Options) Option {
	return func(p *Pipeline) { p.chartOpts = opts }
}

// WithClock replaces time.Now, for metrics timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline for a loaded and validated config.
// sink may be nil only in dry-run mode.
func New(cfg *config.Config, fetcher collector.Fetcher, sink Sink, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		sink:      sink,
		chartOpts: chart.DefaultOptions(),
		log:       logger.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("%w: no data source", model.ErrConfiguration)
	}
	if sink == nil && !p.dryRun {
		return nil, fmt.Errorf("%w: no notification sink", model.ErrConfiguration)
	}
	if p.formatter == nil {
		f, err := notifier.NewFormatter(cfg.Reporting.MessageTemplate)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrConfiguration, err)
		}
		p.formatter = f
	}
	return p, nil
}

// Run executes one cycle. Symbols are fetched one after another; the first failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (rep *Report, err error) {
	runID := uuid.NewString()
	log := logger.WithRunID(p.log, runID)
	start := p.now()
	log.Info("run started", "dry_run", p.dryRun)

	var m *metrics.Run
	if p.cfg.MetricsTextfile != "" {
		m = metrics.NewRun(start)
		defer func() {
			m.Finish(p.now(), err == nil, rep != nil && rep.Delivered)
			if werr := m.WriteTextfile(p.cfg.MetricsTextfile); werr != nil {
				log.Warn("metrics not written", "path", p.cfg.MetricsTextfile, "err", werr)
			}
		}()
	}

	windows := p.cfg.Reporting.SMAWindows
	entries := p.cfg.Symbols()
	symbols := make([]*model.Symbol, len(entries))
	for i, e := range entries {
		symbols[i] = model.NewSymbol(e.Name, e.Ticker, i == 0, windows)
	}

	col := collector.NewCollector(p.fetcher, p.cfg.Reporting.HistoryPeriod, log)
	if err := col.Collect(ctx, symbols); err != nil {
		return nil, err
	}

	for _, sym := range symbols {
		if err := calculator.Apply(sym, windows); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", model.ErrRender, sym.Name, err)
		}
		if m != nil {
			m.ObserveSymbol(sym)
		}
	}

	img, err := p.renderChart(symbols[0])
	if err != nil {
		return nil, err
	}

	msg, err := p.formatter.RenderMessage(symbols, windows)
	if err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(msg); n > notifier.MaxMessageLength {
		log.Warn("message exceeds pushover limit and may be truncated", "length", n, "limit", notifier.MaxMessageLength)
	}

	rep = &Report{RunID: runID, Symbols: symbols, Windows: windows, Message: msg, Chart: img}

	if p.dryRun {
		log.Info("dry run enabled, skipping delivery")
		return rep, nil
	}
	if err := p.sink.Send(ctx, msg, bytes.NewReader(img)); err != nil {
		if !errors.Is(err, model.ErrDelivery) {
			err = fmt.Errorf("%w: %w", model.ErrDelivery, err)
		}
		return nil, err
	}
	rep.Delivered = true
	log.Info("run finished", "duration", p.now().Sub(start))
	return rep, nil
}

// renderChart draws the main symbol into a temporary file and returns its bytes.
func (p *Pipeline) renderChart(sym *model.Symbol) ([]byte, error) {
	f, err := os.CreateTemp("", "indexnotifier-*.png")
	if err != nil {
		return nil, fmt.Errorf("%w: create chart file: %w", model.ErrRender, err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := chart.Render(f, sym, p.cfg.Reporting.DatapointsForGraph, p.chartOpts); err != nil {
		return nil, err
	}
	img, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read chart file: %w", model.ErrRender, err)
	}
	return img, nil
}
