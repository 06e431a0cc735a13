package collector

import (
	"context"
	"fmt"
	"log/slog"

	"IndexNotifier/internal/model"
)

// Collector fetches the history of every configured symbol, one after another.
type Collector struct {
	Fetcher Fetcher
	Period  string
	Log     *slog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, period string, log *slog.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Period: period, Log: log}
}

// Collect fills in the bars of each symbol. The first failure aborts the whole collection.
func (c *Collector) Collect(ctx context.Context, symbols []*model.Symbol) error {
	for _, sym := range symbols {
		c.Log.Info("loading historical data", "name", sym.Name, "symbol", sym.Ticker, "period", c.Period, "source", c.Fetcher.Name())
		bars, err := c.Fetcher.FetchHistory(ctx, sym.Ticker, c.Period)
		if err != nil {
			return fmt.Errorf("%w: %s (%s): %w", model.ErrDataFetch, sym.Name, sym.Ticker, err)
		}
		if len(bars) == 0 {
			return fmt.Errorf("%w: %s (%s): empty price series", model.ErrDataFetch, sym.Name, sym.Ticker)
		}
		sym.Bars = bars
		c.Log.Info("historical data loaded", "symbol", sym.Ticker, "bars", len(bars),
			"from", bars[0].Time.Format("2006-01-02"), "to", bars[len(bars)-1].Time.Format("2006-01-02"))
	}
	return nil
}
