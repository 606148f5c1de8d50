package repos_test

import (
	"testing"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"grivyzom/internal/domain"
	"grivyzom/internal/repos"
)

func TestSweepStatuses(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	events := repos.NewEventRepo(db)

	seed := []domain.CalendarEvent{
		{ID: "s-started", Title: "En curso", Category: "pvp", Status: "upcoming",
			Date: "2026-09-05", StartTime: "20:00", EndTime: "23:00"},
		{ID: "s-ended", Title: "Terminado hoy", Category: "pvp", Status: "ongoing",
			Date: "2026-09-05", StartTime: "10:00", EndTime: "12:00"},
		{ID: "s-yesterday", Title: "De ayer", Category: "torneo", Status: "upcoming",
			Date: "2026-09-04", StartTime: "20:00"},
		{ID: "s-later", Title: "Más tarde", Category: "evento", Status: "upcoming",
			Date: "2026-09-05", StartTime: "23:30"},
		{ID: "s-open-end", Title: "Sin hora de fin", Category: "comunidad", Status: "ongoing",
			Date: "2026-09-05", StartTime: "09:00"},
	}
	for i := range seed {
		if err := events.Create(&seed[i]); err != nil {
			t.Fatalf("seed %s: %v", seed[i].ID, err)
		}
	}

	n, err := events.SweepStatuses("2026-09-05", "21:00")
	if err != nil {
		t.Fatal(err)
	}
	if n < 3 {
		t.Fatalf("updated = %d, want at least 3", n)
	}

	want := map[string]string{
		"s-started":   "ongoing",   // start time passed, end time not yet
		"s-ended":     "completed", // end time passed today
		"s-yesterday": "completed", // dated before today
		"s-later":     "upcoming",  // starts later tonight
		"s-open-end":  "ongoing",   // no end time, stays ongoing today
	}
	for id, status := range want {
		e, err := events.Get(id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if e.Status != status {
			t.Errorf("%s: status = %s, want %s", id, e.Status, status)
		}
	}
}

func TestDeactivateExpiredOffers(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	offers := repos.NewOfferRepo(db)

	expired := &domain.Offer{ID: "off-old", Title: "Rebajas pasadas",
		StartDate: "2026-01-01", EndDate: "2026-02-01", DiscountPercent: 10, Active: true}
	if err := offers.Create(expired); err != nil {
		t.Fatal(err)
	}

	n, err := offers.DeactivateExpired("2026-08-29")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("deactivated = %d, want 1 (the seeded launch offer runs all year)", n)
	}

	active, err := offers.ListActive("2026-08-29")
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range active {
		if o.ID == "off-old" {
			t.Fatal("expired offer still listed as active")
		}
	}
}
