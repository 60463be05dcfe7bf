// Package chart maps aggregate series onto a chart-ready payload:
// labeled datasets with stable colors plus composed hover tooltips.
package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mikezucc/spendingtracker/internal/core"
)

const (
	// NoDataLabel is the placeholder series label when nothing is plotted.
	NoDataLabel = "No data"

	// descriptionLimit caps tooltip descriptions; longer ones are cut to
	// descriptionKeep characters with an ellipsis appended.
	descriptionLimit = 35
	descriptionKeep  = 32

	cumulativeColor = "#0ea5e9"
	weeklyColor     = "#f97316"
)

// Views is the set of independently toggleable chart views.
type Views struct {
	Cumulative bool
	Daily      bool
	Weekly     bool
}

// ParseViews reads a comma-separated view list ("cumulative,daily,weekly").
// Unknown names are ignored.
func ParseViews(s string) Views {
	var v Views
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "cumulative":
			v.Cumulative = true
		case "daily":
			v.Daily = true
		case "weekly":
			v.Weekly = true
		}
	}
	return v
}

// None reports whether every view is toggled off.
func (v Views) None() bool {
	return !v.Cumulative && !v.Daily && !v.Weekly
}

// Key returns a canonical cache key for the toggle combination.
func (v Views) Key() string {
	var parts []string
	if v.Cumulative {
		parts = append(parts, "cumulative")
	}
	if v.Daily {
		parts = append(parts, "daily")
	}
	if v.Weekly {
		parts = append(parts, "weekly")
	}
	return strings.Join(parts, ",")
}

// Dataset is one plottable series.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
	Color string    `json:"color"`
	Kind  string    `json:"kind"` // "line" or "bar"
	Stack string    `json:"stack,omitempty"`
}

// Tooltip is the composed hover content for one date: a headline for the
// day, then a categorized breakdown of the underlying transactions.
type Tooltip struct {
	Title    string   `json:"title"`
	Headline string   `json:"headline"`
	Lines    []string `json:"lines"`
}

// Payload is the full chart input handed to the renderer.
type Payload struct {
	Labels   []string           `json:"labels"`
	Datasets []Dataset          `json:"datasets"`
	Tooltips map[string]Tooltip `json:"tooltips"`
}

// Project maps the enabled aggregate views onto a chart payload. With no
// transactions or no enabled view it yields the empty-state placeholder.
func Project(agg core.Aggregates, v Views) Payload {
	if agg.Empty() || v.None() {
		return Payload{
			Labels:   []string{},
			Datasets: []Dataset{{Label: NoDataLabel, Data: []float64{}}},
			Tooltips: map[string]Tooltip{},
		}
	}

	p := Payload{
		Labels:   agg.Dates,
		Tooltips: make(map[string]Tooltip, len(agg.Dates)),
	}

	if v.Cumulative {
		p.Datasets = append(p.Datasets, Dataset{
			Label: "Cumulative balance",
			Data:  agg.Cumulative,
			Color: cumulativeColor,
			Kind:  "line",
		})
	}
	if v.Daily {
		for _, cat := range agg.Categories {
			p.Datasets = append(p.Datasets, Dataset{
				Label: cat,
				Data:  agg.DailyByCategory[cat],
				Color: CategoryColor(cat),
				Kind:  "bar",
				Stack: "daily",
			})
		}
	}
	if v.Weekly {
		p.Datasets = append(p.Datasets, Dataset{
			Label: "Weekly total",
			Data:  agg.Weekly,
			Color: weeklyColor,
			Kind:  "line",
		})
	}

	for i, date := range agg.Dates {
		p.Tooltips[date] = composeTooltip(date, agg.DailyTotals[i], agg.ByDate[date])
	}

	return p
}

// composeTooltip builds the hover breakdown for one date: the day total
// headline, then per category (alphabetical) a subtotal line followed by
// that category's indented transaction lines.
func composeTooltip(date string, dayTotal float64, txns []core.Transaction) Tooltip {
	byCat := make(map[string][]core.Transaction)
	for _, t := range txns {
		byCat[t.Category] = append(byCat[t.Category], t)
	}
	cats := make([]string, 0, len(byCat))
	for c := range byCat {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	tip := Tooltip{
		Title:    date,
		Headline: "Total: " + FormatUSD(dayTotal),
	}
	for _, cat := range cats {
		var subtotal float64
		for _, t := range byCat[cat] {
			subtotal += t.Amount
		}
		tip.Lines = append(tip.Lines, cat+": "+FormatUSD(subtotal))
		for _, t := range byCat[cat] {
			tip.Lines = append(tip.Lines, "  "+TruncateDescription(t.Description)+" "+SignedUSD(t.Amount))
		}
	}
	return tip
}

// FormatUSD renders a dollar magnitude: absolute value, $ prefix,
// two decimals.
func FormatUSD(v float64) string {
	return fmt.Sprintf("$%.2f", math.Abs(v))
}

// SignedUSD renders a signed dollar amount, keeping the minus sign in
// front of the $ for credits.
func SignedUSD(v float64) string {
	if v < 0 {
		return "-" + FormatUSD(v)
	}
	return FormatUSD(v)
}

// TruncateDescription caps a description for tooltip display.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= descriptionLimit {
		return s
	}
	return string(runes[:descriptionKeep]) + "..."
}
