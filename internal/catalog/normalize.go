package catalog

import (
	"time"

	"velora_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Valeurs par défaut appliquées aux champs absents d'un document brut.
const (
	DefaultCondition = "New"
	DefaultCurrency  = "TL"
	DefaultCategory  = "Uncategorized"
)

// Normalize convertit un document brut en produit canonique. Chaque champ est
// lu défensivement : jamais d'erreur, les champs absents ou mal typés prennent
// une valeur par défaut. Un document sans product_id donne un Product avec un
// ID vide, que l'appelant écarte (loggé, jamais fatal).
func Normalize(raw RawDocument) models.Product {
	p := models.Product{
		ID:             rawString(raw, "product_id"),
		Name:           rawString(raw, "name"),
		Description:    rawString(raw, "description"),
		Brand:          rawString(raw, "brand"),
		Condition:      rawString(raw, "condition"),
		Category:       rawString(raw, "category"),
		Subcategory:    rawString(raw, "subcategory"),
		SubSubcategory: rawString(raw, "sub_subcategory"),
		Gender:         rawString(raw, "gender"),
		Price:          rawFloat(raw, "price"),
		Currency:       rawString(raw, "currency"),
		OriginalPrice:  rawFloat(raw, "original_price"),
		DiscountPct:    rawFloat(raw, "discount_pct"),

		Quantity:        rawInt(raw, "quantity"),
		ColorQuantities: rawIntMap(raw, "color_quantities"),
		Colors:          rawStringList(raw, "colors"),

		IsBoosted:    rawBool(raw, "is_boosted"),
		RankingScore: rawFloat(raw, "ranking_score"),

		ImageURLs:   rawStringList(raw, "image_urls"),
		ColorImages: rawStringListMap(raw, "color_images"),

		RelatedProductIDs: rawStringList(raw, "related_product_ids"),

		SellerID: rawString(raw, "seller_id"),
		ShopID:   rawString(raw, "shop_id"),

		CreatedAt: rawTime(raw, "created_at"),
		UpdatedAt: rawTime(raw, "updated_at"),
	}

	if p.Condition == "" {
		p.Condition = DefaultCondition
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Price < 0 {
		p.Price = 0
	}
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}

	return p
}

func rawString(raw RawDocument, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case gocql.UUID:
		return v.String()
	default:
		return ""
	}
}

func rawFloat(raw RawDocument, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func rawInt(raw RawDocument, key string) int {
	switch v := raw[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func rawBool(raw RawDocument, key string) bool {
	v, _ := raw[key].(bool)
	return v
}

func rawStringList(raw RawDocument, key string) []string {
	switch v := raw[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func rawIntMap(raw RawDocument, key string) map[string]int {
	switch v := raw[key].(type) {
	case map[string]int:
		return v
	case map[string]interface{}:
		out := make(map[string]int, len(v))
		for k, item := range v {
			switch n := item.(type) {
			case int:
				out[k] = n
			case int64:
				out[k] = int(n)
			case float64:
				out[k] = int(n)
			}
		}
		return out
	default:
		return nil
	}
}

func rawStringListMap(raw RawDocument, key string) map[string][]string {
	switch v := raw[key].(type) {
	case map[string][]string:
		return v
	case map[string]interface{}:
		out := make(map[string][]string, len(v))
		for k, item := range v {
			if list := rawStringList(RawDocument{"_": item}, "_"); list != nil {
				out[k] = list
			}
		}
		return out
	default:
		return nil
	}
}

func rawTime(raw RawDocument, key string) *time.Time {
	if t, ok := raw[key].(time.Time); ok && !t.IsZero() {
		return &t
	}
	return nil
}
