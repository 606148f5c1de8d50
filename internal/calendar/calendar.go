// Package calendar builds the 6x7 month grid the events page renders.
// Everything here is a pure projection over an event slice; nothing is
// stored or mutated in place.
package calendar

import (
	"time"

	"grivyzom/internal/domain"
)

const (
	weeksPerGrid = 6
	daysPerWeek  = 7
	gridCells    = weeksPerGrid * daysPerWeek
)

type Day struct {
	Date           time.Time              `json:"date"`
	DayNumber      int                    `json:"dayNumber"`
	IsCurrentMonth bool                   `json:"isCurrentMonth"`
	IsToday        bool                   `json:"isToday"`
	IsPast         bool                   `json:"isPast"`
	HasEvents      bool                   `json:"hasEvents"`
	Events         []domain.CalendarEvent `json:"events"`
}

type MonthData struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"` // 1-12
	MonthName string  `json:"monthName"`
	Weeks     [][]Day `json:"weeks"`
}

var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Truncate strips the time-of-day, keeping the calendar day.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar days only, regardless of location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dayUTC pins a calendar day to UTC midnight so days from different
// locations compare cleanly.
func dayUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the whole-day difference from a to b, ignoring time-of-day.
// A claim at 23:59 and a check at 00:01 the next day yields 1.
func DaysBetween(a, b time.Time) int {
	return int(dayUTC(b).Sub(dayUTC(a)).Hours() / 24)
}

// ParseDay parses a YYYY-MM-DD event date. The zero time is returned for
// malformed input so a bad row never matches any cell.
func ParseDay(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// BuildMonthData renders the month containing cursor into exactly six weeks
// of seven days: the tail of the previous month pads down to Sunday, then
// every day of the month, then the head of the next month up to 42 cells.
// Each cell buckets the events whose date matches it exactly.
func BuildMonthData(cursor time.Time, events []domain.CalendarEvent, today time.Time) MonthData {
	year, month := cursor.Year(), cursor.Month()
	first := time.Date(year, month, 1, 0, 0, 0, 0, cursor.Location())

	// Sunday = 0, so Weekday() is already the pad width.
	start := first.AddDate(0, 0, -int(first.Weekday()))

	days := make([]Day, 0, gridCells)
	for i := 0; i < gridCells; i++ {
		d := start.AddDate(0, 0, i)
		bucket := EventsForDate(events, d)
		days = append(days, Day{
			Date:           d,
			DayNumber:      d.Day(),
			IsCurrentMonth: d.Month() == month && d.Year() == year,
			IsToday:        SameDay(d, today),
			IsPast:         dayUTC(d).Before(dayUTC(today)),
			HasEvents:      len(bucket) > 0,
			Events:         bucket,
		})
	}

	weeks := make([][]Day, 0, weeksPerGrid)
	for i := 0; i < gridCells; i += daysPerWeek {
		weeks = append(weeks, days[i:i+daysPerWeek])
	}

	return MonthData{
		Year:      year,
		Month:     int(month),
		MonthName: monthNames[int(month)-1],
		Weeks:     weeks,
	}
}

// EventsForDate returns the events whose calendar day equals date.
func EventsForDate(events []domain.CalendarEvent, date time.Time) []domain.CalendarEvent {
	var out []domain.CalendarEvent
	for _, e := range events {
		if d := ParseDay(e.Date); !d.IsZero() && SameDay(d, date) {
			out = append(out, e)
		}
	}
	return out
}

// Filter applies the category and completed-status filters. An empty
// category set means every category is shown, not none.
func Filter(events []domain.CalendarEvent, activeCategories []string, showCompleted bool) []domain.CalendarEvent {
	active := map[string]bool{}
	for _, c := range activeCategories {
		active[c] = true
	}
	var out []domain.CalendarEvent
	for _, e := range events {
		if len(active) > 0 && !active[e.Category] {
			continue
		}
		if !showCompleted && e.Status == domain.EventCompleted {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Upcoming returns upcoming-status events dated within [today, today+7d]
// inclusive, sorted ascending by date.
func Upcoming(events []domain.CalendarEvent, today time.Time) []domain.CalendarEvent {
	from := dayUTC(today)
	to := from.AddDate(0, 0, 7)

	var out []domain.CalendarEvent
	for _, e := range events {
		if e.Status != domain.EventUpcoming {
			continue
		}
		d := ParseDay(e.Date)
		if d.IsZero() || dayUTC(d).Before(from) || dayUTC(d).After(to) {
			continue
		}
		out = append(out, e)
	}
	// insertion sort; the window holds at most a handful of events
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Date < out[j-1].Date; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
