package repos

import (
	"grivyzom/internal/domain"

	"github.com/jmoiron/sqlx"
)

type PostRepo struct{ db *sqlx.DB }

func NewPostRepo(db *sqlx.DB) *PostRepo { return &PostRepo{db: db} }

const postCols = `
  p.id, p.slug, p.author_id, u.username AS author_name, p.category, p.title, p.content,
  p.likes, (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
  COALESCE(p.created_at,'') AS created_at`

func (r *PostRepo) List(limit, offset int) ([]domain.Post, error) {
	out := []domain.Post{}
	err := r.db.Select(&out, `
	  SELECT `+postCols+` FROM posts p JOIN users u ON u.id = p.author_id
	  ORDER BY p.created_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	return out, err
}

// Categories lists the distinct categories in use, busiest first.
func (r *PostRepo) Categories() ([]string, error) {
	out := []string{}
	err := r.db.Select(&out, `
	  SELECT category FROM posts WHERE category <> ''
	  GROUP BY category ORDER BY COUNT(*) DESC, category
	`)
	return out, err
}

func (r *PostRepo) BySlug(slug string) (domain.Post, error) {
	var p domain.Post
	err := r.db.Get(&p, `
	  SELECT `+postCols+` FROM posts p JOIN users u ON u.id = p.author_id
	  WHERE p.slug = ?
	`, slug)
	return p, err
}

func (r *PostRepo) Create(p *domain.Post) error {
	_, err := r.db.Exec(`
		INSERT INTO posts(id, slug, author_id, category, title, content)
		VALUES(?,?,?,?,?,?)
	`, p.ID, p.Slug, p.AuthorID, p.Category, p.Title, p.Content)
	return err
}

func (r *PostRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}

// Like records one like per user per post; a repeat like is a no-op.
func (r *PostRepo) Like(postID, userID string) (int, error) {
	res, err := r.db.Exec(`
		INSERT INTO post_likes(post_id, user_id) VALUES(?,?)
		ON CONFLICT(post_id, user_id) DO NOTHING
	`, postID, userID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := r.db.Exec(`UPDATE posts SET likes = likes + 1 WHERE id = ?`, postID); err != nil {
			return 0, err
		}
	}
	var likes int
	err = r.db.Get(&likes, `SELECT likes FROM posts WHERE id = ?`, postID)
	return likes, err
}

func (r *PostRepo) Comments(postID string) ([]domain.Comment, error) {
	out := []domain.Comment{}
	err := r.db.Select(&out, `
	  SELECT c.id, c.post_id, c.author_id, u.username AS author_name, c.content,
	         COALESCE(c.created_at,'') AS created_at
	  FROM comments c JOIN users u ON u.id = c.author_id
	  WHERE c.post_id = ? ORDER BY c.created_at
	`, postID)
	return out, err
}

func (r *PostRepo) AddComment(c *domain.Comment) error {
	_, err := r.db.Exec(`
		INSERT INTO comments(id, post_id, author_id, content) VALUES(?,?,?,?)
	`, c.ID, c.PostID, c.AuthorID, c.Content)
	return err
}

func (r *PostRepo) TopContributors(limit int) ([]domain.TopContributor, error) {
	out := []domain.TopContributor{}
	err := r.db.Select(&out, `
	  SELECT u.id AS user_id, u.username, COUNT(*) AS posts
	  FROM posts p JOIN users u ON u.id = p.author_id
	  GROUP BY u.id, u.username
	  ORDER BY posts DESC LIMIT ?
	`, limit)
	return out, err
}
