package core

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateCumulative(t *testing.T) {
	txns := []Transaction{
		{Date: "2024-01-01", Amount: 10, Description: "a", Category: "Groceries"},
		{Date: "2024-01-02", Amount: -3, Description: "b", Category: "Income"},
		{Date: "2024-01-03", Amount: 5, Description: "c", Category: "Dining"},
	}
	agg := Aggregate(txns)

	want := []float64{10, 7, 12}
	if len(agg.Cumulative) != len(want) {
		t.Fatalf("cumulative length = %d, want %d", len(agg.Cumulative), len(want))
	}
	for i := range want {
		if !almostEqual(agg.Cumulative[i], want[i]) {
			t.Fatalf("cumulative[%d] = %v, want %v", i, agg.Cumulative[i], want[i])
		}
	}
}

func TestAggregateDailyByCategory(t *testing.T) {
	txns := []Transaction{
		{Date: "2024-01-01", Amount: 10, Description: "a", Category: "Groceries"},
		{Date: "2024-01-01", Amount: 2.5, Description: "b", Category: "Groceries"},
		{Date: "2024-01-02", Amount: 4, Description: "c", Category: "Dining"},
	}
	agg := Aggregate(txns)

	groceries := agg.DailyByCategory["Groceries"]
	if !almostEqual(groceries[0], 12.5) || !almostEqual(groceries[1], 0) {
		t.Fatalf("Groceries series = %v, want [12.5 0]", groceries)
	}
	dining := agg.DailyByCategory["Dining"]
	if !almostEqual(dining[0], 0) || !almostEqual(dining[1], 4) {
		t.Fatalf("Dining series = %v, want [0 4]", dining)
	}
	if !almostEqual(agg.DailyTotals[0], 12.5) || !almostEqual(agg.DailyTotals[1], 4) {
		t.Fatalf("DailyTotals = %v, want [12.5 4]", agg.DailyTotals)
	}
}

func TestAggregateWeeklyBroadcast(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-03 a Wednesday of the same week.
	txns := []Transaction{
		{Date: "2024-01-01", Amount: 20, Description: "a", Category: "x"},
		{Date: "2024-01-03", Amount: 5, Description: "b", Category: "y"},
	}
	agg := Aggregate(txns)

	for i, d := range agg.Dates {
		if !almostEqual(agg.Weekly[i], 25) {
			t.Fatalf("weekly[%s] = %v, want 25", d, agg.Weekly[i])
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil)
	if !agg.Empty() {
		t.Fatalf("expected empty aggregates for no transactions")
	}
	if len(agg.Dates) != 0 || len(agg.Cumulative) != 0 {
		t.Fatalf("empty aggregates should carry no series data")
	}
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2024-01-01", "2024-01-01"}, // Monday maps to itself
		{"2024-01-03", "2024-01-01"}, // Wednesday rolls back to Monday
		{"2024-01-06", "2024-01-01"}, // Saturday rolls back to Monday
		{"2024-01-07", "2024-01-01"}, // Sunday belongs to the prior Monday
		{"2024-01-08", "2024-01-08"}, // next Monday starts a new week
		{"2024-03-01", "2024-02-26"}, // month boundary rollback
		{"2024-01-02", "2024-01-01"},
	}
	for _, tc := range cases {
		if got := WeekStart(tc.date); got != tc.want {
			t.Fatalf("WeekStart(%s) = %s, want %s", tc.date, got, tc.want)
		}
	}
}
