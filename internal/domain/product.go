package domain

import "encoding/json"

// Product types form a closed tagged union: the Type field selects which of
// the optional payloads below is meaningful.
const (
	ProductRank     = "rank"
	ProductCosmetic = "cosmetic"
	ProductCrate    = "crate"
	ProductFeature  = "feature"
	ProductItem     = "item"
)

var ProductTypes = []string{ProductRank, ProductCosmetic, ProductCrate, ProductFeature, ProductItem}

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

var Rarities = []string{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// Payment methods a product accepts. "both" is shorthand for money+grovs.
const (
	PayMoney = "money"
	PayGrovs = "grovs"
	PayBoth  = "both"
)

const (
	DurationPermanent = "permanent"
	DurationMonthly   = "monthly"
	DurationWeekly    = "weekly"
	DurationDaily     = "daily"
)

type Product struct {
	ID            string  `db:"id" json:"id"`
	CategoryID    string  `db:"category_id" json:"categoryId"`
	Name          string  `db:"name" json:"name"`
	Description   string  `db:"description" json:"description"`
	Type          string  `db:"type" json:"type"`
	Rarity        string  `db:"rarity" json:"rarity"`
	Price         float64 `db:"price" json:"price"`
	DiscountPrice float64 `db:"discount_price" json:"discountPrice,omitempty"` // 0 = no discount
	ImageURL      string  `db:"image_url" json:"imageUrl"`
	Featured      bool    `db:"featured" json:"featured"`
	New           bool    `db:"is_new" json:"new"`
	Stock         *int    `db:"stock" json:"stock"` // nil = unlimited
	Active        bool    `db:"active" json:"-"`

	// Grovs payment fields.
	GrovsPrice     int64  `db:"grovs_price" json:"grovs_price,omitempty"`
	PaymentMethods string `db:"payment_methods" json:"-"` // comma-separated subset of money,grovs,both
	CashbackPct    int    `db:"cashback_percentage" json:"cashback_percentage,omitempty"`

	// Type-specific payload, stored as JSON and decoded on demand.
	PayloadJSON string `db:"payload_json" json:"-"`

	CreatedAt string `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt string `db:"updated_at" json:"updatedAt,omitempty"`
}

// EffectivePrice is the money price a buyer actually pays.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice > 0 {
		return p.DiscountPrice
	}
	return p.Price
}

// AcceptsGrovs reports whether the product can be bought with grovs.
func (p *Product) AcceptsGrovs() bool {
	for _, m := range splitMethods(p.PaymentMethods) {
		if m == PayGrovs || m == PayBoth {
			return true
		}
	}
	return false
}

func splitMethods(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// RankPayload carries the rank-specific fields of a ProductRank.
type RankPayload struct {
	Color    string        `json:"color"`
	Prefix   string        `json:"prefix"`
	Priority int           `json:"priority"`
	Duration string        `json:"duration,omitempty"`
	Benefits []RankBenefit `json:"benefits"`
	Commands []string      `json:"commands"`
}

type RankBenefit struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight,omitempty"`
}

type CosmeticPayload struct {
	CosmeticType string   `json:"cosmeticType"` // particle|pet|trail|hat|wings|aura|emote
	PreviewURL   string   `json:"previewUrl,omitempty"`
	Colors       []string `json:"colors,omitempty"`
}

type CratePayload struct {
	PossibleItems    []CrateItem `json:"possibleItems"`
	GuaranteedRarity string      `json:"guaranteedRarity,omitempty"`
}

type CrateItem struct {
	Name        string  `json:"name"`
	Rarity      string  `json:"rarity"`
	Probability float64 `json:"probability,omitempty"`
}

type FeaturePayload struct {
	Command    string `json:"command,omitempty"` // e.g. "/fly"
	Duration   string `json:"duration"`
	UsageLimit *int   `json:"usageLimit,omitempty"`
}

type ItemPayload struct {
	Quantity  int  `json:"quantity,omitempty"`
	Stackable bool `json:"stackable,omitempty"`
}

// Payload decodes the type-specific fields into the struct matching the
// product's type tag. The switch is exhaustive over the five known tags.
func (p *Product) Payload() (any, error) {
	raw := []byte(p.PayloadJSON)
	if len(raw) == 0 {
		raw = []byte(`{}`)
	}
	switch p.Type {
	case ProductRank:
		var v RankPayload
		return &v, json.Unmarshal(raw, &v)
	case ProductCosmetic:
		var v CosmeticPayload
		return &v, json.Unmarshal(raw, &v)
	case ProductCrate:
		var v CratePayload
		return &v, json.Unmarshal(raw, &v)
	case ProductFeature:
		var v FeaturePayload
		return &v, json.Unmarshal(raw, &v)
	case ProductItem:
		var v ItemPayload
		return &v, json.Unmarshal(raw, &v)
	}
	return nil, ErrUnknownProductType
}

type Category struct {
	ID          string `db:"id" json:"id"`
	Slug        string `db:"slug" json:"slug"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Icon        string `db:"icon" json:"icon"`
	Color       string `db:"color" json:"color,omitempty"`
	Order       int    `db:"sort_order" json:"order"`
	ProductType string `db:"product_type" json:"productType"`
}

type Offer struct {
	ID              string `db:"id" json:"id"`
	Title           string `db:"title" json:"title"`
	Description     string `db:"description" json:"description"`
	ImageURL        string `db:"image_url" json:"imageUrl"`
	ProductID       string `db:"product_id" json:"productId,omitempty"`
	CategoryID      string `db:"category_id" json:"categoryId,omitempty"`
	DiscountPercent int    `db:"discount_percent" json:"discountPercent"`
	StartDate       string `db:"start_date" json:"startDate"`
	EndDate         string `db:"end_date" json:"endDate"`
	Active          bool   `db:"active" json:"active"`
	Priority        int    `db:"priority" json:"priority"`
}
