// ABOUTME: Month grid projection for dated agenda items
// ABOUTME: Pure function: padded 7-wide cells, per-day event flags and the selected day's items
package calendar

import (
	"sort"
	"time"
)

// Dated is anything that may carry a scheduled time.
type Dated interface {
	When() (time.Time, bool)
}

const dayKey = "2006-01-02"

// Day is one cell of the month grid.
type Day struct {
	Date     time.Time
	Number   int
	HasEvent bool
	Today    bool
	Selected bool
}

// Month is the projection of one calendar month.
type Month[T Dated] struct {
	Year  int
	Month time.Month
	// Cells holds nil padding for the weekday of the 1st (Sunday = 0)
	// followed by one entry per day.
	Cells []*Day
	// SelectedItems are the items on the selected day, earliest first. Empty
	// when the selected day is outside this month.
	SelectedItems []T
}

// Weeks splits the cells into rows of seven, padding the last row with nil.
func (m Month[T]) Weeks() [][]*Day {
	var weeks [][]*Day
	for i := 0; i < len(m.Cells); i += 7 {
		end := min(i+7, len(m.Cells))
		week := make([]*Day, 7)
		copy(week, m.Cells[i:end])
		weeks = append(weeks, week)
	}
	return weeks
}

// Project builds the grid for year/month. Items without a date never mark a
// day. today and selected are compared by calendar date only; a zero
// selected means no selection.
func Project[T Dated](year int, month time.Month, items []T, today, selected time.Time) Month[T] {
	loc := time.Local
	if !today.IsZero() {
		loc = today.Location()
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := daysIn(year, month, loc)

	events := make(map[string]bool, len(items))
	for _, it := range items {
		if t, ok := it.When(); ok {
			events[t.Format(dayKey)] = true
		}
	}

	todayKey := keyOf(today)
	selectedKey := keyOf(selected)

	m := Month[T]{Year: first.Year(), Month: first.Month()}
	m.Cells = make([]*Day, int(first.Weekday()), int(first.Weekday())+days)
	for d := 1; d <= days; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, loc)
		k := date.Format(dayKey)
		m.Cells = append(m.Cells, &Day{
			Date:     date,
			Number:   d,
			HasEvent: events[k],
			Today:    k == todayKey,
			Selected: k == selectedKey,
		})
	}

	if selectedKey != "" && selected.Year() == first.Year() && selected.Month() == first.Month() {
		m.SelectedItems = ItemsOn(items, selected)
	}
	return m
}

// ItemsOn returns the items scheduled on day, earliest first.
func ItemsOn[T Dated](items []T, day time.Time) []T {
	k := day.Format(dayKey)
	var out []T
	for _, it := range items {
		if t, ok := it.When(); ok && t.Format(dayKey) == k {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].When()
		b, _ := out[j].When()
		return a.Before(b)
	})
	return out
}

func keyOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dayKey)
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
