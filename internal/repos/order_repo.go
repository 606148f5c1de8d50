package repos

import (
	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type Order struct {
	ID            string  `db:"id" json:"id"`
	UserID        string  `db:"user_id" json:"user_id,omitempty"`
	SessionID     string  `db:"session_id" json:"-"`
	PaymentMethod string  `db:"payment_method" json:"payment_method"`
	Total         float64 `db:"total" json:"total"`
	TotalGrovs    int64   `db:"total_grovs" json:"total_grovs"`
	Status        string  `db:"status" json:"status"`
	CreatedAt     string  `db:"created_at" json:"created_at"`
}

type OrderLine struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Qty        int     `json:"quantity"`
	Price      float64 `json:"price"`
	GrovsPrice int64   `json:"grovs_price"`
}

func (r *OrderRepo) Create(o *Order, lines []OrderLine) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO orders(id, user_id, session_id, payment_method, total, total_grovs, status)
		VALUES(?,?,?,?,?,?,?)
	`, o.ID, o.UserID, o.SessionID, o.PaymentMethod, o.Total, o.TotalGrovs, o.Status); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id, product_id, name, qty, price, grovs_price)
			VALUES(?,?,?,?,?,?)
		`, o.ID, l.ProductID, l.Name, l.Qty, l.Price, l.GrovsPrice); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) ListLatest(limit int) ([]Order, error) {
	out := []Order{}
	err := r.db.Select(&out, `
	  SELECT id, user_id, session_id, payment_method, total, total_grovs, status,
	         COALESCE(created_at,'') AS created_at
	  FROM orders ORDER BY created_at DESC LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}
