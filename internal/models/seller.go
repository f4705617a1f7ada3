package models

// SellerProfile est l'agrégat affiché sur la page vendeur : utilisateur
// joint à ses avis et, si fourni, à sa boutique.
type SellerProfile struct {
	SellerID      string  `json:"seller_id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
	IsVerified    bool    `json:"is_verified"`
	TotalProducts int     `json:"total_products"`
	TotalSales    int     `json:"total_sales"`
	ShopID        string  `json:"shop_id,omitempty"`
	ShopName      string  `json:"shop_name,omitempty"`
	ShopLogoURL   string  `json:"shop_logo_url,omitempty"`
}
