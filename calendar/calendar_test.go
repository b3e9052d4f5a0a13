package calendar

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustentalski/salescrm/models"
)

func at(y int, m time.Month, d, h, mi int) time.Time {
	return time.Date(y, m, d, h, mi, 0, 0, time.Local)
}

func TestProjectPadsByFirstWeekday(t *testing.T) {
	// January 2025 starts on a Wednesday.
	m := Project[models.AgendaItem](2025, time.January, nil, at(2025, 1, 15, 0, 0), time.Time{})

	require.Len(t, m.Cells, 3+31)
	for i := 0; i < 3; i++ {
		assert.Nil(t, m.Cells[i])
	}
	assert.Equal(t, 1, m.Cells[3].Number)
	assert.Equal(t, 31, m.Cells[len(m.Cells)-1].Number)
	assert.True(t, m.Cells[3+14].Today)

	weeks := m.Weeks()
	require.Len(t, weeks, 5)
	for _, w := range weeks {
		assert.Len(t, w, 7)
	}
}

func TestProjectLeapFebruary(t *testing.T) {
	m := Project[models.AgendaItem](2024, time.February, nil, time.Time{}, time.Time{})
	// February 2024 starts on a Thursday and has 29 days.
	assert.Len(t, m.Cells, 4+29)
}

func TestSelectedDayItemsSortedByTime(t *testing.T) {
	items := []models.AgendaItem{
		{ID: "late", Datetime: "2025-01-10T14:00"},
		{ID: "other", Datetime: "2025-01-11T08:00"},
		{ID: "early", Datetime: "2025-01-10T09:00"},
		{ID: "undated"},
	}

	m := Project(2025, time.January, items, at(2025, 1, 1, 0, 0), at(2025, 1, 10, 0, 0))
	require.Len(t, m.SelectedItems, 2)
	assert.Equal(t, "early", m.SelectedItems[0].ID)
	assert.Equal(t, "late", m.SelectedItems[1].ID)

	day10 := m.Cells[3+9]
	assert.Equal(t, 10, day10.Number)
	assert.True(t, day10.HasEvent)
	assert.True(t, day10.Selected)
	assert.False(t, m.Cells[3+11].HasEvent)
}

func TestSelectionInOtherMonthHasNoItems(t *testing.T) {
	items := []models.AgendaItem{{ID: "x", Datetime: "2025-01-10T09:00"}}
	m := Project(2025, time.February, items, time.Time{}, at(2025, 1, 10, 0, 0))
	assert.Empty(t, m.SelectedItems)
	for _, c := range m.Cells {
		if c != nil {
			assert.False(t, c.Selected)
		}
	}
}

func TestHasEventMatchesDates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		var items []models.AgendaItem
		dated := map[int]bool{}
		count := rng.Intn(10)
		for i := 0; i < count; i++ {
			if rng.Intn(4) == 0 {
				items = append(items, models.AgendaItem{Datetime: ""})
				continue
			}
			day := 1 + rng.Intn(31)
			month := time.March
			if rng.Intn(3) == 0 {
				month = time.April
			} else {
				dated[day] = true
			}
			ts := at(2025, month, day, rng.Intn(24), rng.Intn(60)).Format("2006-01-02T15:04")
			items = append(items, models.AgendaItem{Datetime: ts})
		}

		m := Project(2025, time.March, items, time.Time{}, time.Time{})
		for _, c := range m.Cells {
			if c == nil {
				continue
			}
			assert.Equal(t, dated[c.Number], c.HasEvent, "day %d", c.Number)
		}
	}
}

func TestNavigator(t *testing.T) {
	now := func() time.Time { return at(2025, 1, 20, 15, 0) }
	n := NewNavigator(now)

	y, m := n.Month()
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)
	assert.True(t, n.Selected().Equal(at(2025, 1, 20, 0, 0)))

	n.Select(31)
	n.Next()
	y, m = n.Month()
	assert.Equal(t, time.February, m)
	assert.True(t, n.Selected().Equal(at(2025, 1, 31, 0, 0)), "selection survives navigation")

	n.Select(30)
	assert.True(t, n.Selected().Equal(at(2025, 1, 20, 0, 0)), "invalid day resets to today")

	n.Prev()
	n.Prev()
	y, m = n.Month()
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.December, m)

	n.Today()
	y, m = n.Month()
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.January, m)
}

func TestProjectFor(t *testing.T) {
	n := NewNavigator(func() time.Time { return at(2025, 1, 5, 0, 0) })
	n.Select(10)
	items := []models.AgendaItem{
		{ID: "b", Datetime: "2025-01-10T14:00"},
		{ID: "a", Datetime: "2025-01-10T09:00"},
	}

	m := ProjectFor(n, items)
	require.Len(t, m.SelectedItems, 2)
	assert.Equal(t, "a", m.SelectedItems[0].ID)
}
