package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"grivyzom/internal/domain"
	applog "grivyzom/internal/log"
	"grivyzom/internal/repos"
	"grivyzom/internal/services"
	"grivyzom/internal/validate"
)

// AdminHandler is the staff back-office: catalog management, the product
// draft, events, offers, orders, users and grovs administration. The whole
// group sits behind RequireStaff; destructive operations additionally check
// for the ADMIN role inline.
type AdminHandler struct {
	Products *repos.ProductRepo
	Offers   *repos.OfferRepo
	Events   *repos.EventRepo
	Orders   *repos.OrderRepo
	Users    *repos.UserRepo
	Drafts   *repos.DraftRepo
	Grovs    *services.GrovsService
}

func requireAdminRole(c *fiber.Ctx) *domain.User {
	u := currentUser(c)
	if u == nil || u.Role != domain.RoleAdmin {
		return nil
	}
	return u
}

// ---- products ----

type productBody struct {
	CategoryID     string          `json:"categoryId"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	Rarity         string          `json:"rarity"`
	Price          float64         `json:"price"`
	DiscountPrice  float64         `json:"discountPrice"`
	ImageURL       string          `json:"imageUrl"`
	Featured       bool            `json:"featured"`
	New            bool            `json:"new"`
	Stock          *int            `json:"stock"`
	GrovsPrice     int64           `json:"grovs_price"`
	PaymentMethods []string        `json:"payment_methods"`
	CashbackPct    int             `json:"cashback_percentage"`
	Details        json.RawMessage `json:"details"`
}

func (b *productBody) validate() string {
	if _, okN := validate.Title(b.Name); !okN {
		return "name must be 1-120 characters"
	}
	if !contains(domain.ProductTypes, b.Type) {
		return "unknown product type"
	}
	if b.Rarity != "" && !contains(domain.Rarities, b.Rarity) {
		return "unknown rarity"
	}
	if b.Price < 0 || b.DiscountPrice < 0 || b.GrovsPrice < 0 {
		return "prices cannot be negative"
	}
	if b.DiscountPrice > 0 && b.DiscountPrice >= b.Price {
		return "discount price must be below the regular price"
	}
	for _, m := range b.PaymentMethods {
		switch m {
		case domain.PayMoney, domain.PayGrovs, domain.PayBoth:
		default:
			return "unknown payment method: " + m
		}
	}
	if b.CashbackPct < 0 || b.CashbackPct > 100 {
		return "cashback percentage must be 0-100"
	}
	return ""
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func (b *productBody) apply(p *domain.Product) {
	p.CategoryID = b.CategoryID
	p.Name = strings.TrimSpace(b.Name)
	p.Description = b.Description
	p.Type = b.Type
	p.Rarity = b.Rarity
	p.Price = b.Price
	p.DiscountPrice = b.DiscountPrice
	p.ImageURL = b.ImageURL
	p.Featured = b.Featured
	p.New = b.New
	p.Stock = b.Stock
	p.GrovsPrice = b.GrovsPrice
	p.PaymentMethods = strings.Join(b.PaymentMethods, ",")
	p.CashbackPct = b.CashbackPct
	if len(b.Details) > 0 {
		p.PayloadJSON = string(b.Details)
	}
}

func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var body productBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if msg := body.validate(); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	p := &domain.Product{ID: uuid.NewString(), Active: true}
	body.apply(p)
	if err := h.Products.Create(p); err != nil {
		applog.Error(c, "admin.product.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create product")
	}
	applog.Audit(c, "admin.product.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return okMsg(c, p, "product created")
}

func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	p, err := h.Products.Get(id)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	var body productBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if msg := body.validate(); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	body.apply(&p)
	if err := h.Products.Update(&p); err != nil {
		applog.Error(c, "admin.product.update.fail", err, map[string]any{"product_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not update product")
	}
	applog.Audit(c, "admin.product.update", map[string]any{"product_id": id})
	return okMsg(c, p, "product updated")
}

func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	if err := h.Products.Delete(id); err != nil {
		applog.Error(c, "admin.product.delete.fail", err, map[string]any{"product_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not delete product")
	}
	applog.Audit(c, "admin.product.delete", map[string]any{"product_id": id})
	return okMsg(c, nil, "product removed from the store")
}

// ---- product draft ----

// SaveDraft overwrites the caller's single draft slot. The newest save wins,
// including saves racing from two browser tabs.
func (h *AdminHandler) SaveDraft(c *fiber.Ctx) error {
	u := currentUser(c)
	raw := c.Body()
	if len(raw) == 0 || !json.Valid(raw) {
		return fail(c, fiber.StatusBadRequest, "draft must be a JSON document")
	}
	savedAt := time.Now().Format(time.RFC3339)
	if err := h.Drafts.Save(u.ID, string(raw), savedAt); err != nil {
		applog.Error(c, "admin.draft.save.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, fiber.StatusInternalServerError, "could not save draft")
	}
	return ok(c, fiber.Map{"savedAt": savedAt})
}

func (h *AdminHandler) LoadDraft(c *fiber.Ctx) error {
	u := currentUser(c)
	d, err := h.Drafts.Load(u.ID)
	if err != nil {
		applog.Error(c, "admin.draft.load.fail", err, map[string]any{"user_id": u.ID})
		return fail(c, fiber.StatusInternalServerError, "could not load draft")
	}
	if d == nil {
		return ok(c, nil)
	}
	return ok(c, fiber.Map{"draft": json.RawMessage(d.PayloadJSON), "savedAt": d.SavedAt})
}

func (h *AdminHandler) DiscardDraft(c *fiber.Ctx) error {
	u := currentUser(c)
	if err := h.Drafts.Delete(u.ID); err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not discard draft")
	}
	return okMsg(c, nil, "draft discarded")
}

// ---- offers ----

func (h *AdminHandler) ListOffers(c *fiber.Ctx) error {
	offers, err := h.Offers.ListAll()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not load offers")
	}
	return ok(c, offers)
}

func (h *AdminHandler) CreateOffer(c *fiber.Ctx) error {
	var o domain.Offer
	if err := c.BodyParser(&o); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if _, okT := validate.Title(o.Title); !okT {
		return fail(c, fiber.StatusBadRequest, "title must be 1-120 characters")
	}
	if _, okS := validate.Day(o.StartDate); !okS {
		return fail(c, fiber.StatusBadRequest, "startDate must be YYYY-MM-DD")
	}
	if _, okE := validate.Day(o.EndDate); !okE {
		return fail(c, fiber.StatusBadRequest, "endDate must be YYYY-MM-DD")
	}
	if o.EndDate < o.StartDate {
		return fail(c, fiber.StatusBadRequest, "offer ends before it starts")
	}
	if o.DiscountPercent < 0 || o.DiscountPercent > 100 {
		return fail(c, fiber.StatusBadRequest, "discount percent must be 0-100")
	}
	o.ID = uuid.NewString()
	o.Active = true
	if err := h.Offers.Create(&o); err != nil {
		applog.Error(c, "admin.offer.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create offer")
	}
	applog.Audit(c, "admin.offer.create", map[string]any{"offer_id": o.ID})
	return okMsg(c, o, "offer created")
}

func (h *AdminHandler) UpdateOffer(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid offer id")
	}
	if _, err := h.Offers.Get(id); err != nil {
		return fail(c, fiber.StatusNotFound, "offer not found")
	}
	var o domain.Offer
	if err := c.BodyParser(&o); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if _, okT := validate.Title(o.Title); !okT {
		return fail(c, fiber.StatusBadRequest, "title must be 1-120 characters")
	}
	if _, okS := validate.Day(o.StartDate); !okS {
		return fail(c, fiber.StatusBadRequest, "startDate must be YYYY-MM-DD")
	}
	if _, okE := validate.Day(o.EndDate); !okE {
		return fail(c, fiber.StatusBadRequest, "endDate must be YYYY-MM-DD")
	}
	if o.EndDate < o.StartDate {
		return fail(c, fiber.StatusBadRequest, "offer ends before it starts")
	}
	if o.DiscountPercent < 0 || o.DiscountPercent > 100 {
		return fail(c, fiber.StatusBadRequest, "discount percent must be 0-100")
	}
	o.ID = id
	if err := h.Offers.Update(&o); err != nil {
		applog.Error(c, "admin.offer.update.fail", err, map[string]any{"offer_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not update offer")
	}
	applog.Audit(c, "admin.offer.update", map[string]any{"offer_id": id})
	return okMsg(c, o, "offer updated")
}

func (h *AdminHandler) DeleteOffer(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid offer id")
	}
	if err := h.Offers.Delete(id); err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not delete offer")
	}
	applog.Audit(c, "admin.offer.delete", map[string]any{"offer_id": id})
	return okMsg(c, nil, "offer deleted")
}

// ---- events ----

type eventBody struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
	Location    string          `json:"location"`
	MaxPlayers  int             `json:"maxParticipants"`
	GrovsReward int64           `json:"grovs_reward"`
	Prizes      json.RawMessage `json:"prizes"`
}

func (b *eventBody) validate() string {
	if _, okT := validate.Title(b.Title); !okT {
		return "title must be 1-120 characters"
	}
	if !domain.ValidEventCategory(b.Category) {
		return "unknown category"
	}
	if _, okD := validate.Day(b.Date); !okD {
		return "date must be YYYY-MM-DD"
	}
	if _, okS := validate.Clock(b.StartTime); !okS {
		return "startTime must be HH:mm"
	}
	if b.EndTime != "" {
		if _, okE := validate.Clock(b.EndTime); !okE {
			return "endTime must be HH:mm"
		}
	}
	if b.GrovsReward < 0 {
		return "grovs reward cannot be negative"
	}
	return ""
}

func (b *eventBody) apply(e *domain.CalendarEvent) {
	e.Title = strings.TrimSpace(b.Title)
	e.Description = b.Description
	e.Category = b.Category
	e.Date = b.Date
	e.StartTime = b.StartTime
	e.EndTime = b.EndTime
	e.Location = b.Location
	e.MaxParticipants = b.MaxPlayers
	e.GrovsReward = b.GrovsReward
	if len(b.Prizes) > 0 {
		e.PrizesJSON = string(b.Prizes)
	}
}

func (h *AdminHandler) CreateEvent(c *fiber.Ctx) error {
	var body eventBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if msg := body.validate(); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	e := &domain.CalendarEvent{ID: uuid.NewString(), Status: domain.EventUpcoming}
	body.apply(e)
	if err := h.Events.Create(e); err != nil {
		applog.Error(c, "admin.event.create.fail", err, nil)
		return fail(c, fiber.StatusInternalServerError, "could not create event")
	}
	applog.Audit(c, "admin.event.create", map[string]any{"event_id": e.ID, "date": e.Date})
	return okMsg(c, e, "event created")
}

func (h *AdminHandler) UpdateEvent(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid event id")
	}
	e, err := h.Events.Get(id)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "event not found")
	}
	var body eventBody
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if msg := body.validate(); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	body.apply(&e)
	if err := h.Events.Update(&e); err != nil {
		applog.Error(c, "admin.event.update.fail", err, map[string]any{"event_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not update event")
	}
	applog.Audit(c, "admin.event.update", map[string]any{"event_id": id})
	return okMsg(c, e, "event updated")
}

func (h *AdminHandler) DeleteEvent(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid event id")
	}
	if err := h.Events.Delete(id); err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not delete event")
	}
	applog.Audit(c, "admin.event.delete", map[string]any{"event_id": id})
	return okMsg(c, nil, "event deleted")
}

// ---- orders ----

func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	limit := cast.ToInt(c.Query("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	orders, err := h.Orders.ListLatest(limit)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not load orders")
	}
	return ok(c, orders)
}

func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid order id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	switch body.Status {
	case "pending", "completed", "cancelled":
	default:
		return fail(c, fiber.StatusBadRequest, "unknown status")
	}
	if err := h.Orders.UpdateStatus(id, body.Status); err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not update order")
	}
	applog.Audit(c, "admin.order.status", map[string]any{"order_id": id, "status": body.Status})
	return okMsg(c, nil, "order updated")
}

// ---- grovs administration ----

func (h *AdminHandler) GrovsStats(c *fiber.Ctx) error {
	stats, err := h.Grovs.Repo.Stats()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not load stats")
	}
	earners, err := h.Grovs.Repo.TopEarners(5)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not load stats")
	}
	spenders, err := h.Grovs.Repo.TopSpenders(5)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not load stats")
	}
	return ok(c, fiber.Map{"stats": stats, "top_earners": earners, "top_spenders": spenders})
}

// UserGrovs shows one user's balance view plus their most recent ledger
// entries, for the per-user admin panel.
func (h *AdminHandler) UserGrovs(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid user id")
	}
	u, err := h.Users.ByID(id)
	if err != nil {
		return fail(c, fiber.StatusNotFound, "user not found")
	}
	view, err := h.Grovs.Balance(id)
	if err != nil {
		applog.Error(c, "admin.grovs.user.fail", err, map[string]any{"user_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not load balance")
	}
	recent, err := h.Grovs.Repo.Recent(id, 10)
	if err != nil {
		applog.Error(c, "admin.grovs.user.fail", err, map[string]any{"user_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not load transactions")
	}
	return ok(c, fiber.Map{"user": u, "grovs": view, "recent": recent})
}

// AdjustGrovs applies a manual balance movement. ADMIN only; moderators can
// look but not touch.
func (h *AdminHandler) AdjustGrovs(c *fiber.Ctx) error {
	admin := requireAdminRole(c)
	if admin == nil {
		return fail(c, fiber.StatusForbidden, "admin role required")
	}
	var body struct {
		UserID string `json:"user_id"`
		Amount int64  `json:"amount"`
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	userID, okU := validate.ID(body.UserID)
	if !okU {
		return fail(c, fiber.StatusBadRequest, "invalid user id")
	}
	if strings.TrimSpace(body.Reason) == "" {
		return fail(c, fiber.StatusBadRequest, "a reason is required")
	}
	tx, err := h.Grovs.Adjust(userID, body.Amount, body.Type, admin.ID, body.Reason)
	if err != nil {
		if err == repos.ErrInsufficientGrovs {
			return fail(c, fiber.StatusBadRequest, "balance cannot go negative")
		}
		applog.Error(c, "admin.grovs.adjust.fail", err, map[string]any{"user_id": userID})
		return fail(c, fiber.StatusBadRequest, "could not apply adjustment")
	}
	applog.Audit(c, "admin.grovs.adjust", map[string]any{
		"admin_id": admin.ID, "user_id": userID, "amount": body.Amount, "type": body.Type,
	})
	return okMsg(c, tx, "balance adjusted")
}

// ---- users ----

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit := cast.ToInt(c.Query("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	users, err := h.Users.List(limit, cast.ToInt(c.Query("offset")))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not load users")
	}
	return ok(c, users)
}

func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	admin := requireAdminRole(c)
	if admin == nil {
		return fail(c, fiber.StatusForbidden, "admin role required")
	}
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid user id")
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid body")
	}
	if !domain.ValidRole(body.Role) {
		return fail(c, fiber.StatusBadRequest, "unknown role")
	}
	if id == admin.ID {
		return fail(c, fiber.StatusBadRequest, "cannot change your own role")
	}
	if err := h.Users.UpdateRole(id, body.Role); err != nil {
		return fail(c, fiber.StatusInternalServerError, "could not update role")
	}
	applog.Audit(c, "admin.user.role", map[string]any{"admin_id": admin.ID, "user_id": id, "role": body.Role})
	return okMsg(c, nil, "role updated")
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	admin := requireAdminRole(c)
	if admin == nil {
		return fail(c, fiber.StatusForbidden, "admin role required")
	}
	id, okID := validate.ID(c.Params("id"))
	if !okID {
		return fail(c, fiber.StatusBadRequest, "invalid user id")
	}
	if id == admin.ID {
		return fail(c, fiber.StatusBadRequest, "cannot delete your own account")
	}
	if err := h.Users.Delete(id); err != nil {
		applog.Error(c, "admin.user.delete.fail", err, map[string]any{"user_id": id})
		return fail(c, fiber.StatusInternalServerError, "could not delete user")
	}
	applog.Audit(c, "admin.user.delete", map[string]any{"admin_id": admin.ID, "user_id": id})
	return okMsg(c, nil, "user deleted")
}
