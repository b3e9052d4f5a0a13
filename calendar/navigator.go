// ABOUTME: Month navigation and day selection for the agenda calendar
// ABOUTME: Selection is an absolute date and falls back to today when invalid
package calendar

import "time"

// Navigator tracks the displayed month and the selected day.
//
// The selection is an absolute date, so it survives month changes. Selecting
// a day number that does not exist in the displayed month resets the
// selection to today.
type Navigator struct {
	now      func() time.Time
	year     int
	month    time.Month
	selected time.Time
}

// NewNavigator starts on the current month with today selected.
func NewNavigator(now func() time.Time) *Navigator {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Navigator{
		now:      now,
		year:     t.Year(),
		month:    t.Month(),
		selected: dateOnly(t),
	}
}

// Month returns the displayed year and month.
func (n *Navigator) Month() (int, time.Month) {
	return n.year, n.month
}

// Next moves forward one month.
func (n *Navigator) Next() {
	n.shift(1)
}

// Prev moves back one month.
func (n *Navigator) Prev() {
	n.shift(-1)
}

func (n *Navigator) shift(delta int) {
	t := time.Date(n.year, n.month+time.Month(delta), 1, 0, 0, 0, 0, time.Local)
	n.year, n.month = t.Year(), t.Month()
}

// Select picks a day of the displayed month.
func (n *Navigator) Select(day int) time.Time {
	if day < 1 || day > daysIn(n.year, n.month, time.Local) {
		n.selected = dateOnly(n.now())
		return n.selected
	}
	n.selected = time.Date(n.year, n.month, day, 0, 0, 0, 0, time.Local)
	return n.selected
}

// Selected returns the selected date.
func (n *Navigator) Selected() time.Time {
	return n.selected
}

// Today jumps back to the current month and selects today.
func (n *Navigator) Today() {
	t := n.now()
	n.year, n.month = t.Year(), t.Month()
	n.selected = dateOnly(t)
}

// ProjectFor projects the navigator's displayed month over items.
func ProjectFor[T Dated](n *Navigator, items []T) Month[T] {
	return Project(n.year, n.month, items, n.now(), n.selected)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
