package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	applog "grivyzom/internal/log"
)

// HeaderStatus is what the site header shows about the game servers.
type HeaderStatus struct {
	Online        bool   `json:"online"`
	PlayersOnline int    `json:"players_online"`
	MaxPlayers    int    `json:"max_players"`
	ServerName    string `json:"server_name"`
	Version       string `json:"version"`
	Message       string `json:"message,omitempty"`
	FetchedAt     string `json:"fetched_at,omitempty"`
}

// DefaultHeaderStatus is shown whenever the upstream status endpoint is
// unreachable, slow or malformed. The header must always render something.
var DefaultHeaderStatus = HeaderStatus{
	Online:     false,
	MaxPlayers: 200,
	ServerName: "Grivyzom Network",
	Message:    "Estado no disponible",
}

// StatusService fetches the header status from the upstream endpoint with a
// hard 10 second timeout, caching the last good answer briefly.
type StatusService struct {
	URL    string
	Client *http.Client

	mu       sync.Mutex
	cached   HeaderStatus
	cachedAt time.Time
}

const statusCacheTTL = 30 * time.Second

func NewStatusService(url string) *StatusService {
	return &StatusService{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Current never fails; every error path falls back to DefaultHeaderStatus.
func (s *StatusService) Current() HeaderStatus {
	s.mu.Lock()
	if time.Since(s.cachedAt) < statusCacheTTL && !s.cachedAt.IsZero() {
		st := s.cached
		s.mu.Unlock()
		return st
	}
	s.mu.Unlock()

	st, err := s.fetch()
	if err != nil {
		applog.Job("status.fetch.fail", err, map[string]any{"url": s.URL})
		return DefaultHeaderStatus
	}

	s.mu.Lock()
	s.cached = st
	s.cachedAt = time.Now()
	s.mu.Unlock()
	return st
}

func (s *StatusService) fetch() (HeaderStatus, error) {
	resp, err := s.Client.Get(s.URL)
	if err != nil {
		return HeaderStatus{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return HeaderStatus{}, &statusError{code: resp.StatusCode}
	}
	var st HeaderStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return HeaderStatus{}, err
	}
	st.FetchedAt = time.Now().Format(time.RFC3339)
	return st, nil
}

type statusError struct{ code int }

func (e *statusError) Error() string {
	return http.StatusText(e.code) + " from status endpoint"
}
