package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	applog "grivyzom/internal/log"
	"grivyzom/internal/services"
	"grivyzom/internal/validate"
)

type ForumHandler struct {
	Forum *services.ForumService
}

func (h *ForumHandler) List(c *fiber.Ctx) error {
	return ok(c, h.Forum.List(cast.ToInt(c.Query("limit")), cast.ToInt(c.Query("offset"))))
}

func (h *ForumHandler) Categories(c *fiber.Ctx) error {
	return ok(c, h.Forum.Categories())
}

func (h *ForumHandler) Detail(c *fiber.Ctx) error {
	slug, okSlug := validate.Slug(c.Params("slug"))
	if !okSlug {
		return fail(c, fiber.StatusBadRequest, "invalid slug")
	}
	post, comments, err := h.Forum.BySlug(slug)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "post not found")
	}
	return ok(c, fiber.Map{"post": post, "comments": comments})
}

func (h *ForumHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	var body struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Category string `json:"category"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	title, okT := validate.Title(body.Title)
	if !okT {
		return fail(c, fiber.StatusBadRequest, "title must be 1-120 characters")
	}
	if strings.TrimSpace(body.Content) == "" {
		return fail(c, fiber.StatusBadRequest, "content is required")
	}
	post, err := h.Forum.Create(u.ID, title, body.Content, body.Category)
	if err != nil {
		applog.Error(c, "forum.create.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, fiber.StatusInternalServerError, "could not create post")
	}
	applog.Audit(c, "forum.create", map[string]any{"user_id": u.ID, "slug": post.Slug})
	return okMsg(c, post, "post created")
}

func (h *ForumHandler) Like(c *fiber.Ctx) error {
	u := currentUser(c)
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	likes, err := h.Forum.Like(id, u.ID)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "post not found")
	}
	return ok(c, fiber.Map{"likes": likes})
}

func (h *ForumHandler) Comment(c *fiber.Ctx) error {
	u := currentUser(c)
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid post id")
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(body.Content) == "" {
		return fail(c, fiber.StatusBadRequest, "content is required")
	}
	comment, err := h.Forum.AddComment(id, u.ID, body.Content)
	if err != nil {
		applog.Error(c, "forum.comment.fail", err, map[string]any{"post_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not add comment")
	}
	return okMsg(c, comment, "comment added")
}

func (h *ForumHandler) TopContributors(c *fiber.Ctx) error {
	return ok(c, h.Forum.TopContributors(cast.ToInt(c.Query("limit"))))
}
