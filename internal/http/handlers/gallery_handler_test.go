package handlers_test

import (
	"net/http"
	"testing"
)

func TestGalleryCategoriesCarryImageCounts(t *testing.T) {
	app := newPublicApp(t)

	resp := get(t, app, "/api/v1/gallery/categories")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data, _ := env["data"].(map[string]any)
	cats, _ := data["categories"].([]any)
	if len(cats) != 2 {
		t.Fatalf("categories = %d, want 2", len(cats))
	}
	counts := map[string]float64{}
	for _, raw := range cats {
		c, _ := raw.(map[string]any)
		slug, _ := c["slug"].(string)
		counts[slug], _ = c["image_count"].(float64)
	}
	if counts["construcciones"] != 2 || counts["eventos"] != 1 {
		t.Fatalf("image counts = %v", counts)
	}
}

func TestGalleryImageFilters(t *testing.T) {
	app := newPublicApp(t)

	imagesAt := func(path string) []any {
		resp := get(t, app, path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", path, resp.StatusCode)
		}
		env := decodeEnvelope(t, resp)
		data, _ := env["data"].(map[string]any)
		images, _ := data["images"].([]any)
		return images
	}

	if n := len(imagesAt("/api/v1/gallery/images")); n != 3 {
		t.Fatalf("all images = %d, want 3", n)
	}
	if n := len(imagesAt("/api/v1/gallery/images?category=eventos")); n != 1 {
		t.Fatalf("eventos images = %d, want 1", n)
	}

	featured := imagesAt("/api/v1/gallery/images?featured=true")
	if len(featured) != 1 {
		t.Fatalf("featured images = %d, want 1", len(featured))
	}
	img, _ := featured[0].(map[string]any)
	if img["title"] != "Castillo del Norte" {
		t.Fatalf("featured title = %v", img["title"])
	}
	cat, _ := img["category"].(map[string]any)
	if cat["slug"] != "construcciones" {
		t.Fatalf("featured category = %v", cat)
	}

	if n := len(imagesAt("/api/v1/gallery/images?limit=2")); n != 2 {
		t.Fatalf("limited images = %d, want 2", n)
	}
}

func TestGalleryImageDetail(t *testing.T) {
	app := newPublicApp(t)

	resp := get(t, app, "/api/v1/gallery/images/img-meetup")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data, _ := env["data"].(map[string]any)
	if data["author"] != "Admin" || data["is_featured"] != false {
		t.Fatalf("image = %v", data)
	}

	resp = get(t, app, "/api/v1/gallery/images/img-missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing image: status = %d, want 404", resp.StatusCode)
	}
}
