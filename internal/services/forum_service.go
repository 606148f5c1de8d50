package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"grivyzom/internal/domain"
	applog "grivyzom/internal/log"
	"grivyzom/internal/repos"
)

var ErrBadSlug = errors.New("could not derive a slug from the title")

// ForumService covers posts, comments and likes.
type ForumService struct {
	Posts *repos.PostRepo
}

func NewForumService(posts *repos.PostRepo) *ForumService {
	return &ForumService{Posts: posts}
}

func (s *ForumService) List(limit, offset int) []domain.Post {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	out, err := s.Posts.List(limit, offset)
	if err != nil {
		applog.Job("forum.list.fail", err, nil)
		return []domain.Post{}
	}
	return out
}

func (s *ForumService) Categories() []string {
	out, err := s.Posts.Categories()
	if err != nil {
		applog.Job("forum.categories.fail", err, nil)
		return []string{}
	}
	return out
}

func (s *ForumService) BySlug(slug string) (domain.Post, []domain.Comment, error) {
	p, err := s.Posts.BySlug(slug)
	if err != nil {
		return domain.Post{}, nil, err
	}
	comments, err := s.Posts.Comments(p.ID)
	if err != nil {
		return domain.Post{}, nil, err
	}
	return p, comments, nil
}

func (s *ForumService) Create(authorID, title, body, category string) (*domain.Post, error) {
	slug := Slugify(title)
	if slug == "" {
		return nil, ErrBadSlug
	}
	p := &domain.Post{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Title:    title,
		Slug:     slug,
		Content:  body,
		Category: category,
	}
	if err := s.Posts.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ForumService) Like(postID, userID string) (int, error) {
	return s.Posts.Like(postID, userID)
}

func (s *ForumService) AddComment(postID, authorID, body string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:       uuid.NewString(),
		PostID:   postID,
		AuthorID: authorID,
		Content:  body,
	}
	if err := s.Posts.AddComment(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ForumService) TopContributors(limit int) []domain.TopContributor {
	if limit < 1 || limit > 25 {
		limit = 5
	}
	out, err := s.Posts.TopContributors(limit)
	if err != nil {
		applog.Job("forum.top.fail", err, nil)
		return []domain.TopContributor{}
	}
	return out
}

// Slugify lowercases the title and keeps letters, digits and hyphens.
func Slugify(title string) string {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case !prevDash:
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
