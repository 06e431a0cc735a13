package collector

import (
	"context"

	"IndexNotifier/internal/model"
)

// Fetcher returns the daily price history of a ticker over a lookback period.
// Bars come back in ascending time order.
type Fetcher interface {
	FetchHistory(ctx context.Context, ticker, period string) ([]model.PriceBar, error)
	Name() string
}
