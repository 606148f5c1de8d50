package repos

import (
	"grivyzom/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OfferRepo struct{ db *sqlx.DB }

func NewOfferRepo(db *sqlx.DB) *OfferRepo { return &OfferRepo{db: db} }

const offerCols = `
  id, title, description, image_url, product_id, category_id,
  discount_percent, start_date, end_date, active, priority`

// ListActive returns offers that are flagged active and not yet past their
// end date (the sweep also deactivates them, but the read double-checks).
func (r *OfferRepo) ListActive(today string) ([]domain.Offer, error) {
	out := []domain.Offer{}
	err := r.db.Select(&out, `
	  SELECT `+offerCols+` FROM offers
	  WHERE active = 1 AND end_date >= ?
	  ORDER BY priority DESC, end_date
	`, today)
	return out, err
}

func (r *OfferRepo) ListAll() ([]domain.Offer, error) {
	out := []domain.Offer{}
	err := r.db.Select(&out, `SELECT `+offerCols+` FROM offers ORDER BY priority DESC, end_date`)
	return out, err
}

func (r *OfferRepo) Create(o *domain.Offer) error {
	_, err := r.db.Exec(`
		INSERT INTO offers(id, title, description, image_url, product_id, category_id,
		  discount_percent, start_date, end_date, active, priority)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)
	`, o.ID, o.Title, o.Description, o.ImageURL, o.ProductID, o.CategoryID,
		o.DiscountPercent, o.StartDate, o.EndDate, o.Active, o.Priority)
	return err
}

func (r *OfferRepo) Get(id string) (domain.Offer, error) {
	var o domain.Offer
	err := r.db.Get(&o, `SELECT `+offerCols+` FROM offers WHERE id = ?`, id)
	return o, err
}

func (r *OfferRepo) Update(o *domain.Offer) error {
	_, err := r.db.Exec(`
		UPDATE offers SET title=?, description=?, image_url=?, product_id=?, category_id=?,
		  discount_percent=?, start_date=?, end_date=?, active=?, priority=?
		WHERE id = ?
	`, o.Title, o.Description, o.ImageURL, o.ProductID, o.CategoryID,
		o.DiscountPercent, o.StartDate, o.EndDate, o.Active, o.Priority, o.ID)
	return err
}

func (r *OfferRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM offers WHERE id = ?`, id)
	return err
}

// DeactivateExpired flips active off for offers whose end date has passed.
// Called from the minutely sweep.
func (r *OfferRepo) DeactivateExpired(today string) (int64, error) {
	res, err := r.db.Exec(`UPDATE offers SET active = 0 WHERE active = 1 AND end_date < ?`, today)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
