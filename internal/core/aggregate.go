package core

import (
	"sort"
	"time"
)

// Aggregates holds the derived series for the shared x-axis. All series
// are ephemeral views recomputed from the full transaction list on every
// data change; none of this is ever persisted.
type Aggregates struct {
	// Dates is the sorted set of distinct transaction dates (the x-axis).
	Dates []string

	// Cumulative is the running total up to and including each date.
	Cumulative []float64

	// DailyTotals sums all categories per date. It backs the tooltip
	// headline and is not plotted as a visible series.
	DailyTotals []float64

	// Categories lists the distinct category names, sorted.
	Categories []string

	// DailyByCategory maps category name to its per-date sums, zero-filled
	// for dates where the category had no activity.
	DailyByCategory map[string][]float64

	// Weekly carries each date's owning calendar-week total, broadcast to
	// every day of that week so the series steps flat across the week.
	Weekly []float64

	// ByDate groups the underlying transactions per date for tooltip
	// breakdowns.
	ByDate map[string][]Transaction
}

// Empty reports whether there is nothing to plot.
func (a Aggregates) Empty() bool {
	return len(a.Dates) == 0
}

// Aggregate derives all chart series from the full transaction list.
// Transactions are expected in canonical form with ISO dates, so string
// comparison orders them chronologically.
func Aggregate(txns []Transaction) Aggregates {
	agg := Aggregates{
		DailyByCategory: make(map[string][]float64),
		ByDate:          make(map[string][]Transaction),
	}
	if len(txns) == 0 {
		return agg
	}

	dateSet := make(map[string]struct{})
	catSet := make(map[string]struct{})
	for _, t := range txns {
		dateSet[t.Date] = struct{}{}
		catSet[t.Category] = struct{}{}
		agg.ByDate[t.Date] = append(agg.ByDate[t.Date], t)
	}
	for d := range dateSet {
		agg.Dates = append(agg.Dates, d)
	}
	sort.Strings(agg.Dates)
	for c := range catSet {
		agg.Categories = append(agg.Categories, c)
	}
	sort.Strings(agg.Categories)

	index := make(map[string]int, len(agg.Dates))
	for i, d := range agg.Dates {
		index[d] = i
	}

	n := len(agg.Dates)
	agg.Cumulative = make([]float64, n)
	agg.DailyTotals = make([]float64, n)
	agg.Weekly = make([]float64, n)
	for _, c := range agg.Categories {
		agg.DailyByCategory[c] = make([]float64, n)
	}

	weekTotals := make(map[string]float64)
	for _, t := range txns {
		i := index[t.Date]
		agg.DailyTotals[i] += t.Amount
		agg.DailyByCategory[t.Category][i] += t.Amount
		weekTotals[WeekStart(t.Date)] += t.Amount
	}

	// Running total carried forward; days with no transactions keep the
	// prior value by construction since the x-axis only holds active days.
	var running float64
	for i := range agg.Dates {
		running += agg.DailyTotals[i]
		agg.Cumulative[i] = running
		agg.Weekly[i] = weekTotals[WeekStart(agg.Dates[i])]
	}

	return agg
}

// WeekStart returns the Monday on or before the given ISO date. A Sunday
// belongs to the week that started six days earlier. Dates that fail to
// parse bucket under themselves rather than panicking mid-aggregation.
func WeekStart(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	wd := int(t.Weekday())
	if wd == 0 {
		t = t.AddDate(0, 0, -6)
	} else {
		t = t.AddDate(0, 0, 1-wd)
	}
	return t.Format("2006-01-02")
}
