// Package metrics records the outcome of one run as Prometheus gauges
// and writes them to a node_exporter textfile.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"IndexNotifier/internal/calculator"
	"IndexNotifier/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Run holds the gauges of a single pipeline run on its own registry,
// so a textfile never mixes values from two runs.
type Run struct {
	Registry *prometheus.Registry

	LastRun    prometheus.Gauge
	Success    prometheus.Gauge
	Duration   prometheus.Gauge
	Delivered  prometheus.Gauge
	ClosePrice *prometheus.GaugeVec // labels: symbol
	SMA        *prometheus.GaugeVec // labels: symbol, window
	Distance   *prometheus.GaugeVec // labels: symbol, window

	start time.Time
}

// NewRun registers all gauges on a fresh registry.
func NewRun(start time.Time) *Run {
	r := &Run{
		Registry: prometheus.NewRegistry(),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "indexnotifier_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		Success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "indexnotifier_last_run_success",
			Help: "1 if the last run completed without error",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "indexnotifier_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		Delivered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "indexnotifier_delivered",
			Help: "1 if the last run delivered a notification",
		}),
		ClosePrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "indexnotifier_close_price",
			Help: "Latest close price per symbol",
		}, []string{"symbol"}),
		SMA: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "indexnotifier_sma",
			Help: "Latest simple moving average per symbol and window",
		}, []string{"symbol", "window"}),
		Distance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "indexnotifier_sma_distance",
			Help: "Latest relative distance between close and SMA",
		}, []string{"symbol", "window"}),
		start: start,
	}
	r.Registry.MustRegister(r.LastRun, r.Success, r.Duration, r.Delivered, r.ClosePrice, r.SMA, r.Distance)
	return r
}

// ObserveSymbol records the latest close and every defined SMA/distance of sym.
func (r *Run) ObserveSymbol(sym *model.Symbol) {
	last, ok := sym.LastBar()
	if !ok {
		return
	}
	r.ClosePrice.WithLabelValues(sym.Ticker).Set(last.Close)
	for _, avg := range sym.Averages {
		sma, dist := calculator.Latest(avg)
		window := strconv.Itoa(avg.Window)
		if sma.Valid {
			r.SMA.WithLabelValues(sym.Ticker, window).Set(sma.Float64)
		}
		if dist.Valid {
			r.Distance.WithLabelValues(sym.Ticker, window).Set(dist.Float64)
		}
	}
}

// Finish stamps the run outcome.
func (r *Run) Finish(end time.Time, success, delivered bool) {
	r.LastRun.Set(float64(end.Unix()))
	r.Duration.Set(end.Sub(r.start).Seconds())
	r.Success.Set(boolGauge(success))
	r.Delivered.Set(boolGauge(delivered))
}

// WriteTextfile atomically replaces path with the current gauge values.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
