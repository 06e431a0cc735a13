package notifier

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"IndexNotifier/internal/calculator"
	"IndexNotifier/internal/model"
	"IndexNotifier/internal/strategy"

	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
)

// MaxMessageLength is the Pushover message size limit.
const MaxMessageLength = 1024

//go:embed templates/message.tmpl
var defaultTemplate string

// Formatter renders the report message. Markup in the template is emitted as is.
type Formatter struct {
	tmpl *template.Template
}

// NewFormatter parses the template at path, or the built-in one when path is empty.
func NewFormatter(path string) (*Formatter, error) {
	text := defaultTemplate
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read message template: %w", err)
		}
		text = string(data)
	}
	tmpl, err := template.New("message").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse message template: %w", err)
	}
	return &Formatter{tmpl: tmpl}, nil
}

type windowView struct {
	Window   int
	SMA      string
	Distance string
	Status   model.Status
}

type symbolView struct {
	Name    string
	Ticker  string
	Date    string
	Close   string
	Windows []windowView
}

type messageView struct {
	Headline *model.Status
	Symbols  []symbolView
}

// RenderMessage formats the latest close, SMA and distance of every symbol.
// windows must be normalized (descending); the headline uses the main symbol's first window.
func (f *Formatter) RenderMessage(symbols []*model.Symbol, windows []int) (string, error) {
	if len(symbols) == 0 {
		return "", fmt.Errorf("%w: no symbols to report", model.ErrRender)
	}
	if len(windows) == 0 {
		return "", fmt.Errorf("%w: no sma windows to report", model.ErrRender)
	}

	view := messageView{}
	for _, sym := range symbols {
		sv, err := buildSymbolView(sym, windows)
		if err != nil {
			return "", err
		}
		view.Symbols = append(view.Symbols, sv)
		if sym.Main && view.Headline == nil {
			st := sv.Windows[0].Status
			view.Headline = &st
		}
	}
	if view.Headline == nil {
		st := view.Symbols[0].Windows[0].Status
		view.Headline = &st
	}

	var b strings.Builder
	if err := f.tmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("%w: execute message template: %w", model.ErrRender, err)
	}
	return trimLines(b.String()), nil
}

func buildSymbolView(sym *model.Symbol, windows []int) (symbolView, error) {
	last, ok := sym.LastBar()
	if !ok {
		return symbolView{}, fmt.Errorf("%w: %s has no price data", model.ErrRender, sym.Name)
	}
	sv := symbolView{
		Name:   sym.Name,
		Ticker: sym.Ticker,
		Date:   last.Time.Format("2006-01-02"),
		Close:  formatPrice(last.Close),
	}
	for _, w := range windows {
		avg := sym.Average(w)
		if avg == nil {
			return symbolView{}, fmt.Errorf("%w: %s has no sma%d column", model.ErrRender, sym.Name, w)
		}
		sma, dist := calculator.Latest(*avg)
		if !sma.Valid {
			return symbolView{}, fmt.Errorf("%w: %s sma%d not available with %d bars",
				model.ErrRender, sym.Name, w, len(sym.Bars))
		}
		st, err := strategy.Classify(dist)
		if err != nil {
			return symbolView{}, fmt.Errorf("%w: %s sma%d: %w", model.ErrRender, sym.Name, w, err)
		}
		sv.Windows = append(sv.Windows, windowView{
			Window:   w,
			SMA:      formatPrice(sma.Float64),
			Distance: formatPercent(dist),
			Status:   st,
		})
	}
	return sv, nil
}

func formatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatPercent(v null.Float) string {
	return decimal.NewFromFloat(v.Float64).Shift(2).StringFixed(2) + "%"
}

// trimLines strips every line and drops blank lines at both ends of the message.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
