package services_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"grivyzom/internal/services"
)

func TestStatusFallsBackWhenUpstreamFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := services.NewStatusService(srv.URL)
	got := s.Current()
	if got.Online {
		t.Fatal("fallback status must be offline")
	}
	if got.ServerName != services.DefaultHeaderStatus.ServerName {
		t.Fatalf("server name = %q", got.ServerName)
	}
}

func TestStatusParsesAndCachesUpstream(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"online":true,"players_online":87,"max_players":200,"server_name":"Grivyzom Network","version":"1.21"}`))
	}))
	defer srv.Close()

	s := services.NewStatusService(srv.URL)
	got := s.Current()
	if !got.Online || got.PlayersOnline != 87 {
		t.Fatalf("status = %+v", got)
	}

	// A second read inside the cache window does not hit upstream again.
	_ = s.Current()
	if calls != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls)
	}
}

func TestStatusUnreachableHostFallsBack(t *testing.T) {
	s := services.NewStatusService("http://127.0.0.1:1/status")
	got := s.Current()
	if got.Online {
		t.Fatal("unreachable upstream must yield the offline fallback")
	}
}
