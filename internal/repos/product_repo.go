package repos

import (
	"strings"

	"grivyzom/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, category_id, name, description, type, rarity, price, discount_price,
  image_url, featured, is_new, stock, active,
  grovs_price, payment_methods, cashback_percentage, payload_json,
  COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) List(categoryID, productType, q string, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if categoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	if productType != "" {
		where += ` AND type = ?`
		args = append(args, productType)
	}
	if q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, needle, needle)
	}

	query := `SELECT ` + productCols + ` FROM products WHERE ` + where + `
	  ORDER BY featured DESC, created_at DESC
	  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	out := []domain.Product{}
	err := r.db.Select(&out, query, args...)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) Create(p *domain.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO products(id, category_id, name, description, type, rarity, price, discount_price,
		  image_url, featured, is_new, stock, active, grovs_price, payment_methods, cashback_percentage, payload_json)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, p.ID, p.CategoryID, p.Name, p.Description, p.Type, p.Rarity, p.Price, p.DiscountPrice,
		p.ImageURL, p.Featured, p.New, p.Stock, p.Active, p.GrovsPrice, p.PaymentMethods, p.CashbackPct, p.PayloadJSON)
	return err
}

func (r *ProductRepo) Update(p *domain.Product) error {
	_, err := r.db.Exec(`
		UPDATE products SET category_id=?, name=?, description=?, type=?, rarity=?, price=?,
		  discount_price=?, image_url=?, featured=?, is_new=?, stock=?, active=?,
		  grovs_price=?, payment_methods=?, cashback_percentage=?, payload_json=?,
		  updated_at=CURRENT_TIMESTAMP
		WHERE id=?
	`, p.CategoryID, p.Name, p.Description, p.Type, p.Rarity, p.Price,
		p.DiscountPrice, p.ImageURL, p.Featured, p.New, p.Stock, p.Active,
		p.GrovsPrice, p.PaymentMethods, p.CashbackPct, p.PayloadJSON, p.ID)
	return err
}

func (r *ProductRepo) Delete(id string) error {
	_, err := r.db.Exec(`UPDATE products SET active = 0, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}
