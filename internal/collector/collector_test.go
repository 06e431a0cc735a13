package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"IndexNotifier/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const yahooBody = `{"chart":{"result":[{"timestamp":[1704326400,1704153600,1704240000,1704412800],
"indicators":{"quote":[{"open":[12,10,11,null],"high":[13,11,12,null],"low":[11,9,10,null],
"close":[12.5,10.5,11.5,null],"volume":[300,100,200,null]}]}}],"error":null}}`

func TestYahooFetcher_FetchHistory(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	f := &YahooFetcher{BaseURL: srv.URL, Client: srv.Client()}
	bars, err := f.FetchHistory(context.Background(), "^GSPC", "2y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v8/finance/chart/%5EGSPC" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "range=2y") || !strings.Contains(gotQuery, "interval=1d") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars (null bar skipped), got %d", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Time.Before(bars[i].Time) {
			t.Errorf("bars not ascending at %d", i)
		}
	}
	if bars[0].Close != 10.5 || bars[2].Close != 12.5 || bars[2].Volume != 300 {
		t.Errorf("unexpected bars: %+v", bars)
	}
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{name: "http status", status: http.StatusNotFound, body: "not found", errMsg: "status 404"},
		{name: "api error", status: http.StatusOK,
			body: `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`,
			errMsg: "symbol may be delisted"},
		{name: "empty result", status: http.StatusOK, body: `{"chart":{"result":[],"error":null}}`, errMsg: "no data returned"},
		{name: "bad json", status: http.StatusOK, body: `{`, errMsg: "yahoo decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := &YahooFetcher{BaseURL: srv.URL, Client: srv.Client()}
			_, err := f.FetchHistory(context.Background(), "XXX", "1y")
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestRESTFetcher_FetchHistory(t *testing.T) {
	var gotAuth, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`[{"timestamp":1704240000,"close":2},{"timestamp":1704153600,"close":1}]`))
	}))
	defer srv.Close()

	f := &RESTFetcher{BaseURL: srv.URL, APIKey: "secret", Client: srv.Client(), Now: time.Now}
	bars, err := f.FetchHistory(context.Background(), "SPX", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotLimit != "252" {
		t.Errorf("expected limit 252, got %q", gotLimit)
	}
	if len(bars) != 2 || bars[0].Close != 1 || bars[1].Close != 2 {
		t.Errorf("expected bars sorted ascending, got %+v", bars)
	}
}

func TestCollector_Collect(t *testing.T) {
	mock := &MockFetcher{
		Price: 100,
		Count: 30,
		Bars:  map[string][]model.PriceBar{"^NDX": ConstantBars(50, 10)},
	}
	symbols := []*model.Symbol{
		model.NewSymbol("S&P 500", "^GSPC", true, []int{20}),
		model.NewSymbol("Nasdaq 100", "^NDX", false, []int{20}),
	}
	c := NewCollector(mock, "2y", discardLogger())
	if err := c.Collect(context.Background(), symbols); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.Calls != 2 {
		t.Errorf("expected 2 fetches, got %d", mock.Calls)
	}
	if len(symbols[0].Bars) != 30 || len(symbols[1].Bars) != 10 {
		t.Errorf("unexpected bar counts %d/%d", len(symbols[0].Bars), len(symbols[1].Bars))
	}
}

func TestCollector_Failures(t *testing.T) {
	symbols := []*model.Symbol{
		model.NewSymbol("A", "A", true, []int{5}),
		model.NewSymbol("B", "B", false, []int{5}),
	}

	failing := &MockFetcher{Err: errors.New("boom")}
	err := NewCollector(failing, "1y", discardLogger()).Collect(context.Background(), symbols)
	if !errors.Is(err, model.ErrDataFetch) {
		t.Fatalf("expected ErrDataFetch, got %v", err)
	}
	if failing.Calls != 1 {
		t.Errorf("expected collection to stop after first failure, got %d calls", failing.Calls)
	}

	empty := &MockFetcher{Count: 0}
	err = NewCollector(empty, "1y", discardLogger()).Collect(context.Background(), symbols)
	if !errors.Is(err, model.ErrDataFetch) || !strings.Contains(err.Error(), "empty price series") {
		t.Fatalf("expected empty series error, got %v", err)
	}
}
