package services

import (
	"time"

	"grivyzom/internal/domain"
	applog "grivyzom/internal/log"
	"grivyzom/internal/repos"
)

// CatalogService reads the store catalog. Listing failures degrade to an
// empty catalog rather than an error page; the store front stays up even
// when a query fails.
type CatalogService struct {
	Products   *repos.ProductRepo
	Categories *repos.CategoryRepo
	Offers     *repos.OfferRepo
}

func NewCatalogService(products *repos.ProductRepo, categories *repos.CategoryRepo, offers *repos.OfferRepo) *CatalogService {
	return &CatalogService{Products: products, Categories: categories, Offers: offers}
}

type ProductFilter struct {
	CategoryID  string
	ProductType string
	Query       string
	Limit       int
	Offset      int
}

func (s *CatalogService) List(f ProductFilter) []domain.Product {
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 50
	}
	out, err := s.Products.List(f.CategoryID, f.ProductType, f.Query, f.Limit, f.Offset)
	if err != nil {
		applog.Job("catalog.list.fail", err, nil)
		return []domain.Product{}
	}
	return out
}

// Detail resolves a product together with its decoded type payload.
type ProductDetail struct {
	domain.Product
	Details any `json:"details,omitempty"`
}

func (s *CatalogService) Detail(id string) (*ProductDetail, error) {
	p, err := s.Products.Get(id)
	if err != nil {
		return nil, err
	}
	d := &ProductDetail{Product: p}
	if payload, err := p.Payload(); err == nil {
		d.Details = payload
	} else {
		applog.Job("catalog.payload.fail", err, map[string]any{"product_id": id})
	}
	return d, nil
}

func (s *CatalogService) ListCategories() []domain.Category {
	out, err := s.Categories.List()
	if err != nil {
		applog.Job("catalog.categories.fail", err, nil)
		return []domain.Category{}
	}
	return out
}

// ActiveOffers returns today's running offers, already filtered by date.
func (s *CatalogService) ActiveOffers() []domain.Offer {
	out, err := s.Offers.ListActive(time.Now().Format("2006-01-02"))
	if err != nil {
		applog.Job("catalog.offers.fail", err, nil)
		return []domain.Offer{}
	}
	return out
}
