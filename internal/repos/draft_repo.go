package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DraftRepo persists the admin product form's crash-recovery draft. One
// draft per user; every save overwrites the previous one (last write wins,
// including across tabs).
type DraftRepo struct{ db *sqlx.DB }

func NewDraftRepo(db *sqlx.DB) *DraftRepo { return &DraftRepo{db: db} }

type ProductDraft struct {
	UserID      string `db:"user_id" json:"-"`
	PayloadJSON string `db:"payload_json" json:"draft"`
	SavedAt     string `db:"saved_at" json:"savedAt"`
}

func (r *DraftRepo) Save(userID, payloadJSON, savedAt string) error {
	_, err := r.db.Exec(`
		INSERT INTO product_drafts(user_id, payload_json, saved_at) VALUES(?,?,?)
		ON CONFLICT(user_id) DO UPDATE SET
		  payload_json = excluded.payload_json, saved_at = excluded.saved_at
	`, userID, payloadJSON, savedAt)
	return err
}

// Load returns nil when no draft exists.
func (r *DraftRepo) Load(userID string) (*ProductDraft, error) {
	var d ProductDraft
	err := r.db.Get(&d, `SELECT user_id, payload_json, saved_at FROM product_drafts WHERE user_id = ?`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DraftRepo) Delete(userID string) error {
	_, err := r.db.Exec(`DELETE FROM product_drafts WHERE user_id = ?`, userID)
	return err
}
