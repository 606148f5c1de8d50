package domain

import "encoding/json"

// Event categories are a fixed set of six.
const (
	CategoryPvP           = "pvp"
	CategoryEvento        = "evento"
	CategoryActualizacion = "actualizacion"
	CategoryTorneo        = "torneo"
	CategoryConstruccion  = "construccion"
	CategoryComunidad     = "comunidad"
)

var EventCategories = []string{
	CategoryPvP, CategoryEvento, CategoryActualizacion,
	CategoryTorneo, CategoryConstruccion, CategoryComunidad,
}

func ValidEventCategory(c string) bool {
	for _, k := range EventCategories {
		if k == c {
			return true
		}
	}
	return false
}

const (
	EventUpcoming  = "upcoming"
	EventOngoing   = "ongoing"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

type CalendarEvent struct {
	ID          string `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Date        string `db:"date" json:"date"`             // YYYY-MM-DD
	StartTime   string `db:"start_time" json:"startTime"`  // HH:mm
	EndTime     string `db:"end_time" json:"endTime,omitempty"`
	Category    string `db:"category" json:"category"`
	Status      string `db:"status" json:"status"`
	BannerURL   string `db:"banner_url" json:"bannerUrl,omitempty"`
	Location    string `db:"location" json:"location,omitempty"`

	MaxParticipants     int `db:"max_participants" json:"maxParticipants,omitempty"`
	CurrentParticipants int `db:"current_participants" json:"currentParticipants,omitempty"`

	GrovsReward int64  `db:"grovs_reward" json:"grovs_reward,omitempty"`
	PrizesJSON  string `db:"prizes_json" json:"-"`

	CreatedAt string `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

type EventPrize struct {
	Name     string `json:"name"`
	Rarity   string `json:"rarity,omitempty"`
	Position int    `json:"position,omitempty"`
}

func (e *CalendarEvent) Prizes() []EventPrize {
	if e.PrizesJSON == "" {
		return nil
	}
	var out []EventPrize
	if err := json.Unmarshal([]byte(e.PrizesJSON), &out); err != nil {
		return nil
	}
	return out
}

type EventCategoryInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// EventCategoryConfig carries the display metadata for the six categories.
var EventCategoryConfig = []EventCategoryInfo{
	{ID: CategoryPvP, Name: "PvP", Icon: "⚔️", Color: "#ef4444"},
	{ID: CategoryEvento, Name: "Evento", Icon: "🎉", Color: "#8b5cf6"},
	{ID: CategoryActualizacion, Name: "Actualización", Icon: "🔄", Color: "#3b82f6"},
	{ID: CategoryTorneo, Name: "Torneo", Icon: "🏆", Color: "#f59e0b"},
	{ID: CategoryConstruccion, Name: "Construcción", Icon: "🏗️", Color: "#22c55e"},
	{ID: CategoryComunidad, Name: "Comunidad", Icon: "👥", Color: "#ec4899"},
}

// EventParticipation records one user's completion of one event; the
// (user, event) pair is unique so rewards pay out at most once.
type EventParticipation struct {
	ID          string `db:"id" json:"id"`
	UserID      string `db:"user_id" json:"user_id"`
	EventID     string `db:"event_id" json:"event_id"`
	Status      string `db:"status" json:"status"` // registered|participated|completed|claimed
	GrovsReward int64  `db:"grovs_reward" json:"grovs_reward"`
	CompletedAt string `db:"completed_at" json:"completed_at,omitempty"`
}
