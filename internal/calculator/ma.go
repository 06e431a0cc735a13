package calculator

import (
	"errors"
	"fmt"
	"sort"

	"IndexNotifier/internal/model"

	"github.com/guregu/null/v5"
	"github.com/markcheno/go-talib"
)

// ErrZeroClose is returned when a distance would divide by a zero close price.
var ErrZeroClose = errors.New("zero close price")

// SMASeries computes the trailing simple moving average of closes over window.
// The result is index-aligned with closes; the first window-1 entries are absent.
// A series shorter than window yields all-absent values, not an error.
func SMASeries(closes []float64, window int) ([]null.Float, error) {
	if window <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]null.Float, len(closes))
	if len(closes) < window {
		return out, nil
	}
	raw := talib.Sma(closes, window)
	for i := window - 1; i < len(closes); i++ {
		out[i] = null.FloatFrom(raw[i])
	}
	return out, nil
}

// DistanceSeries computes (close - sma) / close wherever sma is defined.
func DistanceSeries(closes []float64, sma []null.Float) ([]null.Float, error) {
	if len(closes) != len(sma) {
		return nil, fmt.Errorf("length mismatch: %d closes, %d sma values", len(closes), len(sma))
	}
	out := make([]null.Float, len(closes))
	for i, avg := range sma {
		if !avg.Valid {
			continue
		}
		if closes[i] == 0 {
			return nil, fmt.Errorf("distance at index %d: %w", i, ErrZeroClose)
		}
		out[i] = null.FloatFrom((closes[i] - avg.Float64) / closes[i])
	}
	return out, nil
}

// Apply computes SMA and distance for each window and stores them in the symbol's slot for that window.
// Recomputing a window replaces its slot, so repeated calls never duplicate columns.
func Apply(sym *model.Symbol, windows []int) error {
	closes := sym.Closes()
	for _, w := range windows {
		sma, err := SMASeries(closes, w)
		if err != nil {
			return fmt.Errorf("sma%d for %s: %w", w, sym.Ticker, err)
		}
		dist, err := DistanceSeries(closes, sma)
		if err != nil {
			return fmt.Errorf("distance sma%d for %s: %w", w, sym.Ticker, err)
		}
		slot := sym.Average(w)
		if slot == nil {
			sym.Averages = append(sym.Averages, model.Average{Window: w})
			sort.SliceStable(sym.Averages, func(i, j int) bool {
				return sym.Averages[i].Window > sym.Averages[j].Window
			})
			slot = sym.Average(w)
		}
		slot.SMA = sma
		slot.Distance = dist
	}
	return nil
}

// Latest returns the SMA and distance at the most recent bar.
func Latest(avg model.Average) (sma, distance null.Float) {
	if n := len(avg.SMA); n > 0 {
		sma = avg.SMA[n-1]
	}
	if n := len(avg.Distance); n > 0 {
		distance = avg.Distance[n-1]
	}
	return sma, distance
}
