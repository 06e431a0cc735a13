package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"IndexNotifier/internal/model"
)

const sampleINI = `[main_symbol]
name = S&P 500
symbol = ^GSPC

[aux_symbol:ndx]
name = Nasdaq 100
symbol = ^NDX

[aux_symbol:dax]
name = DAX
symbol = ^GDAXI

[reporting]
sma_windows = 100, 200,100
history_period = 2y
datapoints_for_graph = 65

[pushover]
user = uFILE
token = aFILE
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PUSHOVER_USER", "PUSHOVER_TOKEN", "HTTPS_PROXY", "INDEXNOTIFIER_SCHEDULE"} {
		t.Setenv(k, "")
	}
}

func TestLoad_INI(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.ini", sampleINI))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if cfg.MainSymbol.Name != "S&P 500" || cfg.MainSymbol.Ticker != "^GSPC" {
		t.Errorf("unexpected main symbol %+v", cfg.MainSymbol)
	}
	want := []SymbolEntry{
		{Label: "ndx", Name: "Nasdaq 100", Ticker: "^NDX"},
		{Label: "dax", Name: "DAX", Ticker: "^GDAXI"},
	}
	if !reflect.DeepEqual(cfg.AuxSymbols, want) {
		t.Errorf("expected aux %+v, got %+v", want, cfg.AuxSymbols)
	}
	if !reflect.DeepEqual(cfg.Reporting.SMAWindows, []int{200, 100}) {
		t.Errorf("expected windows [200 100], got %v", cfg.Reporting.SMAWindows)
	}
	if cfg.Reporting.HistoryPeriod != "2y" || cfg.Reporting.DatapointsForGraph != 65 {
		t.Errorf("unexpected reporting %+v", cfg.Reporting)
	}
	if cfg.Pushover.User != "uFILE" || cfg.Pushover.Token != "aFILE" {
		t.Errorf("unexpected pushover %+v", cfg.Pushover)
	}
	if len(cfg.Symbols()) != 3 || cfg.Symbols()[0].Ticker != "^GSPC" {
		t.Errorf("expected main symbol first, got %+v", cfg.Symbols())
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	content := `main_symbol:
  name: S&P 500
  symbol: "^GSPC"
aux_symbols:
  - label: ndx
    name: Nasdaq 100
    symbol: "^NDX"
reporting:
  sma_windows: [50, 200]
  history_period: 1y
  datapoints_for_graph: 30
pushover:
  user: u1
  token: t1
schedule:
  cron: "0 22 * * 1-5"
`
	cfg, err := Load(writeFile(t, "config.yaml", content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Reporting.SMAWindows, []int{200, 50}) {
		t.Errorf("expected windows [200 50], got %v", cfg.Reporting.SMAWindows)
	}
	if len(cfg.AuxSymbols) != 1 || cfg.AuxSymbols[0].Ticker != "^NDX" {
		t.Errorf("unexpected aux %+v", cfg.AuxSymbols)
	}
	if cfg.Schedule != "0 22 * * 1-5" {
		t.Errorf("unexpected schedule %q", cfg.Schedule)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.ini"))
	if !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found message, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUSHOVER_USER", "uENV")
	t.Setenv("PUSHOVER_TOKEN", "aENV")
	t.Setenv("HTTPS_PROXY", "http://proxy:3128")
	cfg, err := Load(writeFile(t, "config.ini", sampleINI))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Pushover.User != "uENV" || cfg.Pushover.Token != "aENV" {
		t.Errorf("expected env credentials, got %+v", cfg.Pushover)
	}
	if cfg.Proxy != "http://proxy:3128" {
		t.Errorf("expected env proxy, got %q", cfg.Proxy)
	}
}

func TestLoad_BadWindows(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		windows string
	}{
		{name: "not a number", windows: "200, abc"},
		{name: "zero", windows: "0"},
		{name: "negative", windows: "200,-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(sampleINI, "100, 200,100", tt.windows, 1)
			_, err := Load(writeFile(t, "config.ini", content))
			if !errors.Is(err, model.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestValidate_MissingFields(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		remove string
		errMsg string
	}{
		{name: "main name", remove: "name = S&P 500\n", errMsg: "main_symbol.name"},
		{name: "main symbol", remove: "symbol = ^GSPC\n", errMsg: "main_symbol.symbol"},
		{name: "aux symbol", remove: "symbol = ^NDX\n", errMsg: "aux_symbol:ndx.symbol"},
		{name: "windows", remove: "sma_windows = 100, 200,100\n", errMsg: "reporting.sma_windows"},
		{name: "period", remove: "history_period = 2y\n", errMsg: "reporting.history_period"},
		{name: "datapoints", remove: "datapoints_for_graph = 65\n", errMsg: "reporting.datapoints_for_graph"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(sampleINI, tt.remove, "", 1)
			cfg, err := Load(writeFile(t, "config.ini", content))
			if err != nil {
				t.Fatalf("unexpected load error: %v", err)
			}
			err = cfg.Validate()
			if !errors.Is(err, model.ErrConfiguration) || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected configuration error mentioning %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestValidate_BadPeriod(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.ini", strings.Replace(sampleINI, "2y", "3w", 1)))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "history_period") {
		t.Errorf("expected history_period error, got %v", err)
	}
}

func TestValidateDelivery(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.ini", strings.Replace(sampleINI, "token = aFILE\n", "", 1)))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("credentials must not be needed for computation: %v", err)
	}
	if err := cfg.ValidateDelivery(); !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for missing token, got %v", err)
	}
}
