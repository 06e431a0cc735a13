package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"IndexNotifier/internal/model"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const auxSectionPrefix = "aux_symbol:"

// SymbolEntry is one configured instrument.
type SymbolEntry struct {
	Label  string // aux section suffix, empty for the main symbol
	Name   string
	Ticker string
}

// Config holds all application configuration.
type Config struct {
	Path       string
	MainSymbol SymbolEntry
	AuxSymbols []SymbolEntry // in file order
	Reporting  struct {
		SMAWindows         []int // normalized: unique, descending
		HistoryPeriod      string
		DatapointsForGraph int
		MessageTemplate    string
	}
	Pushover struct {
		User  string
		Token string
	}
	DataSource struct {
		BaseURL string
		APIKey  string
	}
	Proxy           string
	Schedule        string
	MetricsTextfile string
}

// Symbols returns the main symbol followed by the aux symbols.
func (c *Config) Symbols() []SymbolEntry {
	out := make([]SymbolEntry, 0, 1+len(c.AuxSymbols))
	out = append(out, c.MainSymbol)
	return append(out, c.AuxSymbols...)
}

// envOverrides are read from the process environment (and an optional .env file).
type envOverrides struct {
	PushoverUser  string `envconfig:"PUSHOVER_USER"`
	PushoverToken string `envconfig:"PUSHOVER_TOKEN"`
	Proxy         string `envconfig:"HTTPS_PROXY"`
	Schedule      string `envconfig:"INDEXNOTIFIER_SCHEDULE"`
}

// Load reads config from an INI (or .yaml/.yml) file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file %s not found", model.ErrConfiguration, path)
		}
		return nil, fmt.Errorf("%w: read config: %w", model.ErrConfiguration, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		cfg, err = parseINI(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", model.ErrConfiguration, path, err)
	}
	cfg.Path = path

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", model.ErrConfiguration, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return err
	}
	if env.PushoverUser != "" {
		c.Pushover.User = env.PushoverUser
	}
	if env.PushoverToken != "" {
		c.Pushover.Token = env.PushoverToken
	}
	if env.Proxy != "" {
		c.Proxy = env.Proxy
	}
	if env.Schedule != "" {
		c.Schedule = env.Schedule
	}
	return nil
}

func parseINI(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, data)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}

	main := f.Section("main_symbol")
	cfg.MainSymbol = SymbolEntry{Name: value(main, "name"), Ticker: value(main, "symbol")}

	for _, sec := range f.Sections() {
		if !strings.HasPrefix(sec.Name(), auxSectionPrefix) {
			continue
		}
		cfg.AuxSymbols = append(cfg.AuxSymbols, SymbolEntry{
			Label:  strings.TrimPrefix(sec.Name(), auxSectionPrefix),
			Name:   value(sec, "name"),
			Ticker: value(sec, "symbol"),
		})
	}

	rep := f.Section("reporting")
	if raw := value(rep, "sma_windows"); raw != "" {
		windows, err := parseWindows(raw)
		if err != nil {
			return nil, err
		}
		cfg.Reporting.SMAWindows = windows
	}
	cfg.Reporting.HistoryPeriod = value(rep, "history_period")
	if raw := value(rep, "datapoints_for_graph"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("reporting.datapoints_for_graph: %w", err)
		}
		cfg.Reporting.DatapointsForGraph = n
	}
	cfg.Reporting.MessageTemplate = value(rep, "message_template")

	cfg.Pushover.User = value(f.Section("pushover"), "user")
	cfg.Pushover.Token = value(f.Section("pushover"), "token")
	cfg.DataSource.BaseURL = value(f.Section("data_source"), "base_url")
	cfg.DataSource.APIKey = value(f.Section("data_source"), "api_key")
	cfg.Proxy = value(f.Section("network"), "proxy")
	cfg.Schedule = value(f.Section("schedule"), "cron")
	cfg.MetricsTextfile = value(f.Section("metrics"), "textfile")
	return cfg, nil
}

func value(sec *ini.Section, key string) string {
	return strings.TrimSpace(sec.Key(key).String())
}

func parseWindows(raw string) ([]int, error) {
	var windows []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("reporting.sma_windows: %q is not an integer", part)
		}
		windows = append(windows, w)
	}
	normalized, err := model.NormalizeWindows(windows)
	if err != nil {
		return nil, fmt.Errorf("reporting.sma_windows: %w", err)
	}
	return normalized, nil
}

// yamlConfig mirrors the INI layout for YAML files.
type yamlConfig struct {
	MainSymbol struct {
		Name   string `yaml:"name"`
		Symbol string `yaml:"symbol"`
	} `yaml:"main_symbol"`
	AuxSymbols []struct {
		Label  string `yaml:"label"`
		Name   string `yaml:"name"`
		Symbol string `yaml:"symbol"`
	} `yaml:"aux_symbols"`
	Reporting struct {
		SMAWindows         []int  `yaml:"sma_windows"`
		HistoryPeriod      string `yaml:"history_period"`
		DatapointsForGraph int    `yaml:"datapoints_for_graph"`
		MessageTemplate    string `yaml:"message_template"`
	} `yaml:"reporting"`
	Pushover struct {
		User  string `yaml:"user"`
		Token string `yaml:"token"`
	} `yaml:"pushover"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Proxy    string `yaml:"proxy"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

func parseYAML(data []byte) (*Config, error) {
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	cfg := &Config{}
	cfg.MainSymbol = SymbolEntry{Name: raw.MainSymbol.Name, Ticker: raw.MainSymbol.Symbol}
	for _, a := range raw.AuxSymbols {
		cfg.AuxSymbols = append(cfg.AuxSymbols, SymbolEntry{Label: a.Label, Name: a.Name, Ticker: a.Symbol})
	}
	if len(raw.Reporting.SMAWindows) > 0 {
		windows, err := model.NormalizeWindows(raw.Reporting.SMAWindows)
		if err != nil {
			return nil, fmt.Errorf("reporting.sma_windows: %w", err)
		}
		cfg.Reporting.SMAWindows = windows
	}
	cfg.Reporting.HistoryPeriod = raw.Reporting.HistoryPeriod
	cfg.Reporting.DatapointsForGraph = raw.Reporting.DatapointsForGraph
	cfg.Reporting.MessageTemplate = raw.Reporting.MessageTemplate
	cfg.Pushover.User = raw.Pushover.User
	cfg.Pushover.Token = raw.Pushover.Token
	cfg.DataSource.BaseURL = raw.DataSource.BaseURL
	cfg.DataSource.APIKey = raw.DataSource.APIKey
	cfg.Proxy = raw.Proxy
	cfg.Schedule = raw.Schedule.Cron
	cfg.MetricsTextfile = raw.Metrics.Textfile
	return cfg, nil
}

// Validate checks that all fields needed for computation are set.
func (c *Config) Validate() error {
	if c.MainSymbol.Name == "" {
		return invalid("main_symbol.name is required")
	}
	if c.MainSymbol.Ticker == "" {
		return invalid("main_symbol.symbol is required")
	}
	for _, a := range c.AuxSymbols {
		if a.Name == "" {
			return invalid("aux_symbol:%s.name is required", a.Label)
		}
		if a.Ticker == "" {
			return invalid("aux_symbol:%s.symbol is required", a.Label)
		}
	}
	if len(c.Reporting.SMAWindows) == 0 {
		return invalid("reporting.sma_windows is required")
	}
	if c.Reporting.HistoryPeriod == "" {
		return invalid("reporting.history_period is required")
	}
	if !model.ValidPeriod(c.Reporting.HistoryPeriod) {
		return invalid("reporting.history_period %q must be one of %s",
			c.Reporting.HistoryPeriod, strings.Join(model.HistoryPeriods, ", "))
	}
	if c.Reporting.DatapointsForGraph <= 0 {
		return invalid("reporting.datapoints_for_graph must be positive")
	}
	return nil
}

// ValidateDelivery checks the Pushover credentials. Dry runs skip it.
func (c *Config) ValidateDelivery() error {
	if c.Pushover.User == "" {
		return invalid("pushover.user is required")
	}
	if c.Pushover.Token == "" {
		return invalid("pushover.token is required")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrConfiguration, fmt.Sprintf(format, args...))
}
