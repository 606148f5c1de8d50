package repos

import (
	"grivyzom/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.Select(&out, `
	  SELECT id, slug, name, description, icon, color, sort_order, product_type
	  FROM categories ORDER BY sort_order, name
	`)
	return out, err
}

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `
	  SELECT id, slug, name, description, icon, color, sort_order, product_type
	  FROM categories WHERE id = ? OR slug = ?
	`, id, id)
	return c, err
}
