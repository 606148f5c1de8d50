package services_test

import (
	"testing"

	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"grivyzom/internal/repos"
	"grivyzom/internal/services"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Guía de Encantamientos":   "gu-a-de-encantamientos",
		"  Torneo PvP 2026!  ":     "torneo-pvp-2026",
		"---":                      "",
		"Nueva Actualización 1.21": "nueva-actualizaci-n-1-21",
	}
	for in, want := range cases {
		if got := services.Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestForumPostLifecycle(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	svc := services.NewForumService(repos.NewPostRepo(db))
	users := repos.NewUserRepo(db)
	steve, err := users.ByUsername("Steve")
	if err != nil {
		t.Fatal(err)
	}
	alex, err := users.ByUsername("Alex")
	if err != nil {
		t.Fatal(err)
	}

	post, err := svc.Create(steve.ID, "Torneo PvP 2026", "Apuntaos en este hilo", "eventos")
	if err != nil {
		t.Fatal(err)
	}
	if post.Slug != "torneo-pvp-2026" {
		t.Fatalf("slug = %q", post.Slug)
	}

	// Likes are idempotent per user.
	if _, err := svc.Like(post.ID, alex.ID); err != nil {
		t.Fatal(err)
	}
	likes, err := svc.Like(post.ID, alex.ID)
	if err != nil {
		t.Fatal(err)
	}
	if likes != 1 {
		t.Fatalf("likes = %d, want 1 after a double like", likes)
	}

	if _, err := svc.AddComment(post.ID, alex.ID, "¡Me apunto!"); err != nil {
		t.Fatal(err)
	}
	got, comments, err := svc.BySlug("torneo-pvp-2026")
	if err != nil {
		t.Fatal(err)
	}
	if got.CommentCount != 1 || len(comments) != 1 {
		t.Fatalf("comments = %d/%d, want 1", got.CommentCount, len(comments))
	}
	if got.AuthorName != "Steve" {
		t.Fatalf("author = %q", got.AuthorName)
	}
}
