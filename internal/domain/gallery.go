package domain

// GalleryCategory is a gallery section with its live image count.
type GalleryCategory struct {
	ID          string `db:"id" json:"id"`
	Slug        string `db:"slug" json:"slug"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Icon        string `db:"icon" json:"icon"`
	ImageCount  int    `db:"image_count" json:"image_count"`
}

// GalleryImageCategory is the category reference embedded in an image.
type GalleryImageCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type GalleryImage struct {
	ID           string               `db:"id" json:"id"`
	Title        string               `db:"title" json:"title"`
	Description  string               `db:"description" json:"description"`
	ImageURL     string               `db:"image_url" json:"image_url"`
	ThumbnailURL string               `db:"thumbnail_url" json:"thumbnail_url"`
	Author       string               `db:"author" json:"author"`
	Featured     bool                 `db:"is_featured" json:"is_featured"`
	Category     GalleryImageCategory `db:"-" json:"category"`
	CreatedAt    string               `db:"created_at" json:"created_at"`
}
