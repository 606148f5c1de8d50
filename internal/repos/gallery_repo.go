package repos

import (
	"grivyzom/internal/domain"

	"github.com/jmoiron/sqlx"
)

type GalleryRepo struct{ db *sqlx.DB }

func NewGalleryRepo(db *sqlx.DB) *GalleryRepo { return &GalleryRepo{db: db} }

const galleryImageCols = `
  i.id, i.title, i.description, i.image_url, i.thumbnail_url, i.author, i.is_featured,
  COALESCE(i.created_at,'') AS created_at,
  c.id AS category_id, c.name AS category_name, c.slug AS category_slug`

// galleryImageRow carries the joined category columns next to the image.
type galleryImageRow struct {
	domain.GalleryImage
	CategoryID   string `db:"category_id"`
	CategoryName string `db:"category_name"`
	CategorySlug string `db:"category_slug"`
}

func (row galleryImageRow) image() domain.GalleryImage {
	img := row.GalleryImage
	img.Category = domain.GalleryImageCategory{
		ID:   row.CategoryID,
		Name: row.CategoryName,
		Slug: row.CategorySlug,
	}
	return img
}

// Categories lists active gallery sections with their image counts.
func (r *GalleryRepo) Categories() ([]domain.GalleryCategory, error) {
	out := []domain.GalleryCategory{}
	err := r.db.Select(&out, `
	  SELECT c.id, c.slug, c.name, c.description, c.icon,
	    (SELECT COUNT(*) FROM gallery_images i WHERE i.category_id = c.id) AS image_count
	  FROM gallery_categories c
	  WHERE c.active = 1
	  ORDER BY c.name
	`)
	return out, err
}

func (r *GalleryRepo) Images(categorySlug string, featuredOnly bool, limit int) ([]domain.GalleryImage, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	where := `1 = 1`
	args := []any{}
	if categorySlug != "" {
		where += ` AND c.slug = ?`
		args = append(args, categorySlug)
	}
	if featuredOnly {
		where += ` AND i.is_featured = 1`
	}
	args = append(args, limit)

	rows := []galleryImageRow{}
	err := r.db.Select(&rows, `
	  SELECT `+galleryImageCols+` FROM gallery_images i
	  JOIN gallery_categories c ON c.id = i.category_id
	  WHERE `+where+`
	  ORDER BY i.created_at DESC, i.rowid DESC
	  LIMIT ?
	`, args...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GalleryImage, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.image())
	}
	return out, nil
}

func (r *GalleryRepo) Image(id string) (domain.GalleryImage, error) {
	var row galleryImageRow
	err := r.db.Get(&row, `
	  SELECT `+galleryImageCols+` FROM gallery_images i
	  JOIN gallery_categories c ON c.id = i.category_id
	  WHERE i.id = ?
	`, id)
	if err != nil {
		return domain.GalleryImage{}, err
	}
	return row.image(), nil
}
