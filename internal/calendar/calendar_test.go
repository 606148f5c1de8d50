package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grivyzom/internal/calendar"
	"grivyzom/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildMonthDataAlwaysSixWeeks(t *testing.T) {
	// February 2026 starts on a Sunday and has 28 days; the grid must still
	// carry six full weeks.
	md := calendar.BuildMonthData(day(2026, time.February, 1), nil, day(2026, time.February, 10))
	require.Len(t, md.Weeks, 6)
	for _, w := range md.Weeks {
		require.Len(t, w, 7)
	}
	assert.Equal(t, "Febrero", md.MonthName)
	assert.Equal(t, 2, md.Month)

	// First cell is February 1st itself (a Sunday), last cells spill into March.
	assert.Equal(t, 1, md.Weeks[0][0].DayNumber)
	assert.True(t, md.Weeks[0][0].IsCurrentMonth)
	last := md.Weeks[5][6]
	assert.False(t, last.IsCurrentMonth)
	assert.Equal(t, time.March, last.Date.Month())

	// Leap-year February keeps the same shape with its 29th day in place.
	leap := calendar.BuildMonthData(day(2028, time.February, 1), nil, day(2028, time.February, 10))
	require.Len(t, leap.Weeks, 6)
	for _, w := range leap.Weeks {
		require.Len(t, w, 7)
	}
	found29 := false
	for _, w := range leap.Weeks {
		for _, cell := range w {
			if cell.IsCurrentMonth && cell.DayNumber == 29 {
				found29 = true
			}
		}
	}
	assert.True(t, found29, "Feb 29 missing from the leap-year grid")
}

func TestBuildMonthDataDecemberRollsIntoJanuary(t *testing.T) {
	md := calendar.BuildMonthData(day(2026, time.December, 15), nil, day(2026, time.December, 15))
	assert.Equal(t, 2026, md.Year)
	assert.Equal(t, 12, md.Month)
	last := md.Weeks[5][6]
	assert.Equal(t, time.January, last.Date.Month())
	assert.Equal(t, 2027, last.Date.Year())
}

func TestBuildMonthDataBucketsEvents(t *testing.T) {
	events := []domain.CalendarEvent{
		{ID: "e1", Date: "2026-03-10", Category: domain.CategoryPvP, Status: domain.EventUpcoming},
		{ID: "e2", Date: "2026-03-10", Category: domain.CategoryTorneo, Status: domain.EventUpcoming},
		{ID: "e3", Date: "2026-04-01", Category: domain.CategoryPvP, Status: domain.EventUpcoming},
	}
	md := calendar.BuildMonthData(day(2026, time.March, 1), events, day(2026, time.March, 10))

	var hit *calendar.Day
	for i := range md.Weeks {
		for j := range md.Weeks[i] {
			if md.Weeks[i][j].IsCurrentMonth && md.Weeks[i][j].DayNumber == 10 {
				hit = &md.Weeks[i][j]
			}
		}
	}
	require.NotNil(t, hit)
	assert.True(t, hit.HasEvents)
	assert.Len(t, hit.Events, 2)
	assert.True(t, hit.IsToday)
	assert.False(t, hit.IsPast)
}

func TestFilterEmptyCategorySetShowsEverything(t *testing.T) {
	events := []domain.CalendarEvent{
		{ID: "a", Category: domain.CategoryPvP, Status: domain.EventUpcoming},
		{ID: "b", Category: domain.CategoryComunidad, Status: domain.EventUpcoming},
		{ID: "c", Category: domain.CategoryTorneo, Status: domain.EventCompleted},
	}

	got := calendar.Filter(events, nil, false)
	assert.Len(t, got, 2, "empty set means all categories, completed still hidden")

	got = calendar.Filter(events, nil, true)
	assert.Len(t, got, 3)

	got = calendar.Filter(events, []string{domain.CategoryPvP}, true)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestUpcomingWindowIsInclusiveAndSorted(t *testing.T) {
	today := day(2026, time.May, 10)
	events := []domain.CalendarEvent{
		{ID: "late", Date: "2026-05-17", Status: domain.EventUpcoming},   // today+7, inclusive
		{ID: "early", Date: "2026-05-10", Status: domain.EventUpcoming},  // today itself
		{ID: "past", Date: "2026-05-09", Status: domain.EventUpcoming},   // yesterday
		{ID: "beyond", Date: "2026-05-18", Status: domain.EventUpcoming}, // today+8
		{ID: "done", Date: "2026-05-12", Status: domain.EventCompleted},
		{ID: "mid", Date: "2026-05-13", Status: domain.EventUpcoming},
	}

	got := calendar.Upcoming(events, today)
	require.Len(t, got, 3)
	assert.Equal(t, "early", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "late", got[2].ID)
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	claim := time.Date(2026, time.June, 1, 23, 59, 0, 0, time.UTC)
	check := time.Date(2026, time.June, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, calendar.DaysBetween(claim, check))

	sameDay := time.Date(2026, time.June, 1, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, 0, calendar.DaysBetween(sameDay, claim))

	assert.Equal(t, 3, calendar.DaysBetween(day(2026, time.June, 1), day(2026, time.June, 4)))
}
