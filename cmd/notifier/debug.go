package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"IndexNotifier/internal/model"
	"IndexNotifier/internal/pipeline"

	"github.com/fatih/color"
	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
)

// rows printed at each end of a long table
const tableEdge = 5

func printData(w io.Writer, rep *pipeline.Report) {
	header := color.New(color.FgYellow, color.Bold)
	for _, sym := range rep.Symbols {
		header.Fprintf(w, "%s (%s)\n", sym.Name, sym.Ticker)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprint(tw, "Date\tOpen\tHigh\tLow\tClose\tVolume\t")
		for _, avg := range sym.Averages {
			fmt.Fprintf(tw, "SMA%d\tDistance%d\t", avg.Window, avg.Window)
		}
		fmt.Fprintln(tw)

		n := len(sym.Bars)
		for i := 0; i < n; i++ {
			if n > 2*tableEdge && i == tableEdge {
				fmt.Fprintln(tw, "...\t")
				i = n - tableEdge
			}
			writeRow(tw, sym, i)
		}
		tw.Flush()
		fmt.Fprintf(w, "[%d rows]\n\n", n)
	}
}

func writeRow(w io.Writer, sym *model.Symbol, i int) {
	b := sym.Bars[i]
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f\t",
		b.Time.Format("2006-01-02"), fixed(b.Open), fixed(b.High), fixed(b.Low), fixed(b.Close), b.Volume)
	for _, avg := range sym.Averages {
		fmt.Fprintf(w, "%s\t%s\t", optional(avg.SMA, i, 0), optional(avg.Distance, i, 2))
	}
	fmt.Fprintln(w)
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// optional formats vals[i] shifted by shift decimal places, or "-" when absent.
func optional(vals []null.Float, i int, shift int32) string {
	if i >= len(vals) || !vals[i].Valid {
		return "-"
	}
	s := decimal.NewFromFloat(vals[i].Float64).Shift(shift).StringFixed(2)
	if shift != 0 {
		s += "%"
	}
	return s
}

// showGraph writes the chart next to other temp files and hands it to the desktop viewer.
// The file is left in place for the viewer to read.
func (a *app) showGraph(img []byte) error {
	f, err := os.CreateTemp("", "indexnotifier-*.png")
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if _, err := f.Write(img); err != nil {
		f.Close()
		return fmt.Errorf("write chart file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart file: %w", err)
	}
	if err := a.openFile(f.Name()); err != nil {
		return fmt.Errorf("open chart %s: %w", f.Name(), err)
	}
	return nil
}
