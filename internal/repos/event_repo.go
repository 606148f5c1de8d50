package repos

import (
	"grivyzom/internal/domain"

	"github.com/jmoiron/sqlx"
)

type EventRepo struct{ db *sqlx.DB }

func NewEventRepo(db *sqlx.DB) *EventRepo { return &EventRepo{db: db} }

const eventCols = `
  id, title, description, date, start_time, end_time, category, status,
  banner_url, location, max_participants, current_participants,
  grovs_reward, prizes_json,
  COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

func (r *EventRepo) List() ([]domain.CalendarEvent, error) {
	out := []domain.CalendarEvent{}
	err := r.db.Select(&out, `SELECT `+eventCols+` FROM events ORDER BY date, start_time`)
	return out, err
}

func (r *EventRepo) ListRange(startDate, endDate string) ([]domain.CalendarEvent, error) {
	out := []domain.CalendarEvent{}
	err := r.db.Select(&out, `
	  SELECT `+eventCols+` FROM events
	  WHERE date >= ? AND date <= ?
	  ORDER BY date, start_time
	`, startDate, endDate)
	return out, err
}

func (r *EventRepo) Get(id string) (domain.CalendarEvent, error) {
	var e domain.CalendarEvent
	err := r.db.Get(&e, `SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	return e, err
}

func (r *EventRepo) Create(e *domain.CalendarEvent) error {
	_, err := r.db.Exec(`
		INSERT INTO events(id, title, description, date, start_time, end_time, category, status,
		  banner_url, location, max_participants, grovs_reward, prizes_json)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, e.ID, e.Title, e.Description, e.Date, e.StartTime, e.EndTime, e.Category, e.Status,
		e.BannerURL, e.Location, e.MaxParticipants, e.GrovsReward, e.PrizesJSON)
	return err
}

func (r *EventRepo) Update(e *domain.CalendarEvent) error {
	_, err := r.db.Exec(`
		UPDATE events SET title=?, description=?, date=?, start_time=?, end_time=?, category=?,
		  status=?, banner_url=?, location=?, max_participants=?, grovs_reward=?, prizes_json=?,
		  updated_at=CURRENT_TIMESTAMP
		WHERE id=?
	`, e.Title, e.Description, e.Date, e.StartTime, e.EndTime, e.Category,
		e.Status, e.BannerURL, e.Location, e.MaxParticipants, e.GrovsReward, e.PrizesJSON, e.ID)
	return err
}

func (r *EventRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}

// SweepStatuses advances event lifecycle from the clock: upcoming events
// whose day has started become ongoing, and ongoing events past their day
// (or past end_time today) become completed. Cancelled events are left
// alone. today is YYYY-MM-DD, now is HH:mm.
func (r *EventRepo) SweepStatuses(today, now string) (int64, error) {
	var touched int64

	res, err := r.db.Exec(`
		UPDATE events SET status = 'ongoing', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'upcoming' AND date = ? AND start_time <= ?
	`, today, now)
	if err != nil {
		return touched, err
	}
	if n, err := res.RowsAffected(); err == nil {
		touched += n
	}

	res, err = r.db.Exec(`
		UPDATE events SET status = 'completed', updated_at = CURRENT_TIMESTAMP
		WHERE status IN ('upcoming','ongoing')
		  AND (date < ? OR (date = ? AND end_time != '' AND end_time <= ?))
	`, today, today, now)
	if err != nil {
		return touched, err
	}
	if n, err := res.RowsAffected(); err == nil {
		touched += n
	}
	return touched, nil
}
