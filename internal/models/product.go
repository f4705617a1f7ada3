package models

import "time"

// Product est la représentation canonique d'un article du catalogue.
// Les documents bruts sont normalisés par internal/catalog avant d'arriver ici.
type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Brand          string  `json:"brand,omitempty"`
	Condition      string  `json:"condition"`
	Category       string  `json:"category"`
	Subcategory    string  `json:"subcategory,omitempty"`
	SubSubcategory string  `json:"sub_subcategory,omitempty"`
	Gender         string  `json:"gender,omitempty"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	OriginalPrice  float64 `json:"original_price,omitempty"`
	DiscountPct    float64 `json:"discount_pct,omitempty"`

	Quantity        int            `json:"quantity"`
	ColorQuantities map[string]int `json:"color_quantities,omitempty"`
	Colors          []string       `json:"colors,omitempty"`

	IsBoosted    bool    `json:"is_boosted"`
	RankingScore float64 `json:"ranking_score"`

	ImageURLs   []string            `json:"image_urls"`
	ColorImages map[string][]string `json:"color_images,omitempty"`

	RelatedProductIDs []string `json:"related_product_ids,omitempty"`

	SellerID string `json:"seller_id,omitempty"`
	ShopID   string `json:"shop_id,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// InStock : un produit est en stock si la quantité globale ou au moins
// une quantité par couleur est positive.
func (p Product) InStock() bool {
	if p.Quantity > 0 {
		return true
	}
	for _, q := range p.ColorQuantities {
		if q > 0 {
			return true
		}
	}
	return false
}
