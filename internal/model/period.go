package model

import "time"

// HistoryPeriods lists the lookback windows accepted in configuration (Yahoo range syntax).
var HistoryPeriods = []string{"1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// ValidPeriod reports whether p is one of HistoryPeriods.
func ValidPeriod(p string) bool {
	for _, v := range HistoryPeriods {
		if v == p {
			return true
		}
	}
	return false
}

// TradingDays approximates the number of daily bars a period covers.
// It returns 0 for "max" (no limit) and for unknown periods.
func TradingDays(period string, now time.Time) int {
	switch period {
	case "1mo":
		return 22
	case "3mo":
		return 66
	case "6mo":
		return 126
	case "1y":
		return 252
	case "2y":
		return 504
	case "5y":
		return 1260
	case "10y":
		return 2520
	case "ytd":
		jan1 := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		days := int(now.Sub(jan1).Hours()/24)*5/7 + 1
		return days
	}
	return 0
}
