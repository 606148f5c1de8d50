package services

import (
	"errors"
	"time"

	"grivyzom/internal/calendar"
	"grivyzom/internal/domain"
	applog "grivyzom/internal/log"
	"grivyzom/internal/repos"
)

// ErrBadDate rejects a date string that is not a real calendar day.
var ErrBadDate = errors.New("invalid date")

// EventService builds calendar views over the stored events.
type EventService struct {
	Events *repos.EventRepo
	Grovs  *repos.GrovsRepo

	Now func() time.Time
}

func NewEventService(events *repos.EventRepo, grovs *repos.GrovsRepo) *EventService {
	return &EventService{Events: events, Grovs: grovs, Now: time.Now}
}

// CalendarFilter narrows the visible events. An empty Categories set means
// every category; ShowCompleted defaults to hiding finished events.
type CalendarFilter struct {
	Categories    []string
	ShowCompleted bool
}

// Month assembles the fixed six-week grid for year/month with the filter
// applied. The grid shape never depends on how many events matched.
func (s *EventService) Month(year int, month time.Month, f CalendarFilter) (calendar.MonthData, error) {
	events, err := s.Events.List()
	if err != nil {
		return calendar.MonthData{}, err
	}
	visible := calendar.Filter(events, f.Categories, f.ShowCompleted)
	cursor := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return calendar.BuildMonthData(cursor, visible, s.Now()), nil
}

// Upcoming lists events inside the next seven days, soonest first.
func (s *EventService) Upcoming(f CalendarFilter) []domain.CalendarEvent {
	events, err := s.Events.List()
	if err != nil {
		applog.Job("events.upcoming.fail", err, nil)
		return []domain.CalendarEvent{}
	}
	visible := calendar.Filter(events, f.Categories, f.ShowCompleted)
	return calendar.Upcoming(visible, s.Now())
}

func (s *EventService) ForDate(day string, f CalendarFilter) ([]domain.CalendarEvent, error) {
	d := calendar.ParseDay(day)
	if d.IsZero() {
		return nil, ErrBadDate
	}
	events, err := s.Events.List()
	if err != nil {
		return nil, err
	}
	visible := calendar.Filter(events, f.Categories, f.ShowCompleted)
	return calendar.EventsForDate(visible, d), nil
}

// Detail returns one event plus whether the given user already collected
// its reward. userID may be empty for anonymous visitors.
type EventDetail struct {
	domain.CalendarEvent
	Prizes    []domain.EventPrize `json:"prizes,omitempty"`
	Completed bool                `json:"completed"`
}

func (s *EventService) Detail(eventID, userID string) (*EventDetail, error) {
	ev, err := s.Events.Get(eventID)
	if err != nil {
		return nil, err
	}
	d := &EventDetail{CalendarEvent: ev, Prizes: ev.Prizes()}
	if userID != "" {
		done, err := s.Grovs.HasCompletedEvent(userID, eventID)
		if err != nil {
			return nil, err
		}
		d.Completed = done
	}
	return d, nil
}

// Categories exposes the display metadata for every event category.
func (s *EventService) Categories() []domain.EventCategoryInfo {
	return domain.EventCategoryConfig
}
