package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/gofiber/fiber/v2"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"grivyzom/internal/config"
	"grivyzom/internal/http/handlers"
	"grivyzom/internal/repos"
	"grivyzom/internal/services"
)

func newPublicApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	authSvc := services.NewAuthService(repos.NewUserRepo(db), EventBus.New(), "test-secret")
	deps := handlers.NewDeps(db, config.Config{}, authSvc)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/store/products", deps.StoreHandler.Products)
	api.Get("/store/categories", deps.StoreHandler.Categories)
	api.Get("/events/calendar", deps.EventHandler.Month)
	api.Get("/events/upcoming", deps.EventHandler.Upcoming)
	api.Get("/events/categories", deps.EventHandler.Categories)
	api.Get("/events/date/:date", deps.EventHandler.ForDate)
	api.Get("/events/:id", deps.EventHandler.Detail)
	api.Get("/forum/posts", deps.ForumHandler.List)
	api.Get("/gallery/categories", deps.GalleryHandler.Categories)
	api.Get("/gallery/images", deps.GalleryHandler.Images)
	api.Get("/gallery/images/:id", deps.GalleryHandler.Image)
	return app
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestCalendarMonthGridShape(t *testing.T) {
	app := newPublicApp(t)

	resp := get(t, app, "/api/v1/events/calendar?year=2026&month=9")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data, _ := env["data"].(map[string]any)
	if data["monthName"] != "Septiembre" {
		t.Fatalf("monthName = %v", data["monthName"])
	}
	weeks, _ := data["weeks"].([]any)
	if len(weeks) != 6 {
		t.Fatalf("weeks = %d, want 6", len(weeks))
	}
	for i, w := range weeks {
		if days, _ := w.([]any); len(days) != 7 {
			t.Fatalf("week %d has %d days", i, len(days))
		}
	}
}

func TestCalendarRejectsUnknownCategory(t *testing.T) {
	app := newPublicApp(t)
	resp := get(t, app, "/api/v1/events/calendar?categories=carreras")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEventDateEndpointValidatesFormat(t *testing.T) {
	app := newPublicApp(t)

	resp := get(t, app, "/api/v1/events/date/05-09-2026")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// Well-formed but not a real day.
	resp = get(t, app, "/api/v1/events/date/2026-02-31")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("impossible day: status = %d, want 400", resp.StatusCode)
	}

	resp = get(t, app, "/api/v1/events/date/2026-09-05")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	events, _ := env["data"].([]any)
	if len(events) != 1 {
		t.Fatalf("events on 2026-09-05 = %d, want the seeded PvP night", len(events))
	}
}

func TestEventDetailCarriesPrizes(t *testing.T) {
	app := newPublicApp(t)
	resp := get(t, app, "/api/v1/events/evt-pvp-night")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data, _ := env["data"].(map[string]any)
	prizes, _ := data["prizes"].([]any)
	if len(prizes) != 1 {
		t.Fatalf("prizes = %v", data["prizes"])
	}
}

func TestEventCategoriesListsAllSix(t *testing.T) {
	app := newPublicApp(t)
	resp := get(t, app, "/api/v1/events/categories")
	env := decodeEnvelope(t, resp)
	cats, _ := env["data"].([]any)
	if len(cats) != 6 {
		t.Fatalf("categories = %d, want 6", len(cats))
	}
}

func TestProductListingFilters(t *testing.T) {
	app := newPublicApp(t)

	resp := get(t, app, "/api/v1/store/products")
	env := decodeEnvelope(t, resp)
	all, _ := env["data"].([]any)
	if len(all) != 5 {
		t.Fatalf("seeded products = %d, want 5", len(all))
	}

	resp = get(t, app, "/api/v1/store/products?type=rank")
	env = decodeEnvelope(t, resp)
	ranks, _ := env["data"].([]any)
	if len(ranks) != 1 {
		t.Fatalf("rank products = %d, want 1", len(ranks))
	}

	resp = get(t, app, "/api/v1/store/products?q=alas")
	env = decodeEnvelope(t, resp)
	hits, _ := env["data"].([]any)
	if len(hits) != 1 {
		t.Fatalf("search hits = %d, want 1", len(hits))
	}
}
