package collector

import (
	"context"
	"time"

	"IndexNotifier/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Count int
	Bars  map[string][]model.PriceBar // per ticker, takes precedence over generated bars
	Err   error
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, ticker, _ string) ([]model.PriceBar, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[ticker]; ok {
		return bars, nil
	}
	return ConstantBars(m.Price, m.Count), nil
}

// ConstantBars generates count daily bars that all close at price.
func ConstantBars(price float64, count int) []model.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		bars[i] = model.PriceBar{
			Time:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000000,
		}
	}
	return bars
}
