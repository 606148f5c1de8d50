package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"grivyzom/internal/domain"
	"grivyzom/internal/repos"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrProductInactive = errors.New("product not available")
)

const maxLineQty = 50

// CartLine snapshots the product at the moment it was added; later catalog
// edits do not change a cart already in progress.
type CartLine struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
	AddedAt  time.Time      `json:"added_at"`
}

// CartView is the cart plus its derived totals, recomputed on every read.
//
// Total is what the buyer pays (effective prices), Discount is what the
// active discounts saved, and Subtotal is the pre-discount sum, so
// Subtotal = Total + Discount always holds.
type CartView struct {
	Items           []CartLine `json:"items"`
	ItemCount       int        `json:"item_count"`
	Subtotal        float64    `json:"subtotal"`
	Discount        float64    `json:"discount"`
	Total           float64    `json:"total"`
	TotalGrovs      int64      `json:"total_grovs"`
	CanPayWithGrovs bool       `json:"can_pay_with_grovs"`
	CashbackGrovs   int64      `json:"cashback_grovs"`
}

// CartService keeps one cart per session in memory. Carts never touch the
// database until checkout; losing the process loses open carts, which
// matches how a browser-held cart behaves.
type CartService struct {
	mu    sync.RWMutex
	carts map[string][]CartLine

	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
	Grovs    *GrovsService

	// CheckoutURL is the external payment page money checkouts redirect to.
	CheckoutURL string
}

func NewCartService(products *repos.ProductRepo, orders *repos.OrderRepo, grovs *GrovsService, checkoutURL string) *CartService {
	return &CartService{
		carts:       make(map[string][]CartLine),
		Products:    products,
		Orders:      orders,
		Grovs:       grovs,
		CheckoutURL: checkoutURL,
	}
}

func (s *CartService) Get(sid string) CartView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return buildView(s.carts[sid])
}

// Add puts a product in the cart, or bumps the quantity when the same
// product is already there. One product, one line.
func (s *CartService) Add(sid, productID string, qty int) (CartView, error) {
	if qty < 1 {
		qty = 1
	}
	p, err := s.Products.Get(productID)
	if err != nil {
		return CartView{}, err
	}
	if !p.Active {
		return CartView{}, ErrProductInactive
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[sid]
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity = clampQty(lines[i].Quantity + qty)
			return buildView(lines), nil
		}
	}
	lines = append(lines, CartLine{Product: p, Quantity: clampQty(qty), AddedAt: time.Now()})
	s.carts[sid] = lines
	return buildView(lines), nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(sid, productID string, qty int) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[sid]
	for i := range lines {
		if lines[i].Product.ID != productID {
			continue
		}
		if qty <= 0 {
			lines = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].Quantity = clampQty(qty)
		}
		s.carts[sid] = lines
		break
	}
	return buildView(s.carts[sid])
}

func (s *CartService) Remove(sid, productID string) CartView {
	return s.UpdateQuantity(sid, productID, 0)
}

func (s *CartService) Clear(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sid)
}

// DropSession discards the cart when its session ends.
func (s *CartService) DropSession(sid string) { s.Clear(sid) }

func clampQty(q int) int {
	if q > maxLineQty {
		return maxLineQty
	}
	if q < 1 {
		return 1
	}
	return q
}

func buildView(lines []CartLine) CartView {
	v := CartView{Items: make([]CartLine, len(lines)), CanPayWithGrovs: len(lines) > 0}
	copy(v.Items, lines)
	for _, l := range lines {
		eff := l.Product.EffectivePrice()
		q := float64(l.Quantity)
		v.ItemCount += l.Quantity
		v.Total += eff * q
		if l.Product.DiscountPrice > 0 {
			v.Discount += (l.Product.Price - l.Product.DiscountPrice) * q
		}
		v.TotalGrovs += l.Product.GrovsPrice * int64(l.Quantity)
		if !l.Product.AcceptsGrovs() {
			v.CanPayWithGrovs = false
		}
		if l.Product.CashbackPct > 0 {
			v.CashbackGrovs += int64(math.Floor(eff * q * float64(l.Product.CashbackPct) / 100))
		}
	}
	v.Subtotal = v.Total + v.Discount
	return v
}

// ---- checkout ----

type CheckoutResult struct {
	OrderID     string  `json:"order_id"`
	RedirectURL string  `json:"redirect_url,omitempty"`
	Total       float64 `json:"total"`
	Cashback    int64   `json:"cashback_grovs,omitempty"`
}

// Checkout records a pending money order and hands back the external
// payment URL. The cart stays intact until the payment callback confirms;
// an abandoned payment leaves the cart ready to retry.
func (s *CartService) Checkout(sid, userID string) (*CheckoutResult, error) {
	s.mu.RLock()
	view := buildView(s.carts[sid])
	s.mu.RUnlock()
	if len(view.Items) == 0 {
		return nil, ErrEmptyCart
	}

	order := &repos.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		SessionID:     sid,
		PaymentMethod: "money",
		Total:         view.Total,
		Status:        "pending",
	}
	if err := s.Orders.Create(order, toLines(view.Items)); err != nil {
		return nil, err
	}
	return &CheckoutResult{
		OrderID:     order.ID,
		RedirectURL: fmt.Sprintf("%s?order=%s", s.CheckoutURL, order.ID),
		Total:       view.Total,
		Cashback:    view.CashbackGrovs,
	}, nil
}

// ConfirmPayment completes a pending money order and pays out cashback.
func (s *CartService) ConfirmPayment(sid, orderID, userID string) error {
	s.mu.RLock()
	view := buildView(s.carts[sid])
	s.mu.RUnlock()

	if err := s.Orders.UpdateStatus(orderID, "completed"); err != nil {
		return err
	}
	if userID != "" && view.CashbackGrovs > 0 {
		if err := s.Grovs.AwardCashback(userID, view.CashbackGrovs, orderID); err != nil {
			return err
		}
	}
	s.Clear(sid)
	return nil
}

type GrovsCheckoutResult struct {
	OrderID       string   `json:"order_id"`
	GrovsSpent    int64    `json:"grovs_spent"`
	NewBalance    int64    `json:"new_balance"`
	TransactionID string   `json:"transaction_id"`
	Products      []string `json:"products"`
}

// CheckoutWithGrovs validates the whole cart, debits the entire total as a
// single ledger movement and records the order. Validation failures leave
// both the cart and the balance untouched; the cart is cleared only after
// everything succeeded.
func (s *CartService) CheckoutWithGrovs(sid, userID string) (*GrovsCheckoutResult, error) {
	s.mu.RLock()
	view := buildView(s.carts[sid])
	s.mu.RUnlock()

	if len(view.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if !view.CanPayWithGrovs {
		return nil, ErrNotPayableInGrovs
	}

	names := make([]string, len(view.Items))
	for i, l := range view.Items {
		names[i] = l.Product.Name
	}

	entry, err := s.Grovs.Repo.Apply(userID, domain.TxStorePurchase, -view.TotalGrovs,
		"Compra en tienda: "+strings.Join(names, ", "), "", "purchase", "", "")
	if err != nil {
		return nil, err
	}

	order := &repos.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		SessionID:     sid,
		PaymentMethod: "grovs",
		TotalGrovs:    view.TotalGrovs,
		Status:        "completed",
	}
	if err := s.Orders.Create(order, toLines(view.Items)); err != nil {
		return nil, err
	}

	s.Clear(sid)
	return &GrovsCheckoutResult{
		OrderID:       order.ID,
		GrovsSpent:    view.TotalGrovs,
		NewBalance:    entry.BalanceAfter,
		TransactionID: entry.ID,
		Products:      names,
	}, nil
}

func toLines(items []CartLine) []repos.OrderLine {
	out := make([]repos.OrderLine, len(items))
	for i, l := range items {
		out[i] = repos.OrderLine{
			ProductID:  l.Product.ID,
			Name:       l.Product.Name,
			Qty:        l.Quantity,
			Price:      l.Product.EffectivePrice(),
			GrovsPrice: l.Product.GrovsPrice,
		}
	}
	return out
}
