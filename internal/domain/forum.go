package domain

type Post struct {
	ID           string `db:"id" json:"id"`
	Slug         string `db:"slug" json:"slug"`
	AuthorID     string `db:"author_id" json:"author_id"`
	AuthorName   string `db:"author_name" json:"author_name"`
	Category     string `db:"category" json:"category"`
	Title        string `db:"title" json:"title"`
	Content      string `db:"content" json:"content"`
	Likes        int    `db:"likes" json:"likes"`
	CommentCount int    `db:"comment_count" json:"comment_count"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

type Comment struct {
	ID         string `db:"id" json:"id"`
	PostID     string `db:"post_id" json:"post_id"`
	AuthorID   string `db:"author_id" json:"author_id"`
	AuthorName string `db:"author_name" json:"author_name"`
	Content    string `db:"content" json:"content"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}

type TopContributor struct {
	UserID   string `db:"user_id" json:"user_id"`
	Username string `db:"username" json:"username"`
	Posts    int    `db:"posts" json:"posts"`
}
