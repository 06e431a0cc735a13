package model

import (
	"time"

	"github.com/guregu/null/v5"
)

// PriceBar represents a single daily candlestick bar.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Average holds one SMA window's derived columns, index-aligned with the symbol's bars.
// Entries are invalid (absent) where the window has not filled yet.
type Average struct {
	Window   int
	SMA      []null.Float
	Distance []null.Float
}

// Symbol is one configured instrument with its fetched bars and derived columns.
type Symbol struct {
	Name     string
	Ticker   string
	Main     bool
	Bars     []PriceBar
	Averages []Average // one slot per configured window, descending
}

// NewSymbol creates a Symbol with an empty slot for each window.
// windows must already be normalized.
func NewSymbol(name, ticker string, main bool, windows []int) *Symbol {
	avgs := make([]Average, len(windows))
	for i, w := range windows {
		avgs[i] = Average{Window: w}
	}
	return &Symbol{Name: name, Ticker: ticker, Main: main, Averages: avgs}
}

// Average returns the slot for window, or nil if the window is not configured.
func (s *Symbol) Average(window int) *Average {
	for i := range s.Averages {
		if s.Averages[i].Window == window {
			return &s.Averages[i]
		}
	}
	return nil
}

// Closes extracts the close prices in bar order.
func (s *Symbol) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// LastBar returns the most recent bar.
func (s *Symbol) LastBar() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
