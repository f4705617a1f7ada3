package catalog

import (
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	p := Normalize(RawDocument{"product_id": "p1"})

	if p.ID != "p1" {
		t.Fatalf("ID: attendu p1, obtenu %q", p.ID)
	}
	if p.Condition != "New" {
		t.Errorf("Condition par défaut: attendu New, obtenu %q", p.Condition)
	}
	if p.Currency != "TL" {
		t.Errorf("Currency par défaut: attendu TL, obtenu %q", p.Currency)
	}
	if p.Category != "Uncategorized" {
		t.Errorf("Category par défaut: attendu Uncategorized, obtenu %q", p.Category)
	}
	if p.Price != 0 || p.Quantity != 0 {
		t.Errorf("numériques par défaut: attendu 0, obtenu price=%v quantity=%v", p.Price, p.Quantity)
	}
	if p.ImageURLs == nil || len(p.ImageURLs) != 0 {
		t.Errorf("ImageURLs: attendu liste vide, obtenu %v", p.ImageURLs)
	}
}

func TestNormalizeMalformedNeverPanics(t *testing.T) {
	// Types volontairement faux sur chaque champ
	p := Normalize(RawDocument{
		"product_id":      42,
		"name":            []string{"pas", "une", "string"},
		"price":           "gratuit",
		"quantity":        "beaucoup",
		"colors":          "rouge",
		"color_quantities": []int{1, 2},
		"is_boosted":      "oui",
		"image_urls":      map[string]string{},
	})

	// Un document sans ID exploitable est écarté par l'appelant
	if p.ID != "" {
		t.Fatalf("ID: attendu vide pour un product_id non-string, obtenu %q", p.ID)
	}
}

func TestNormalizeFullDocument(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Normalize(RawDocument{
		"product_id":       "p7",
		"name":             "Veste en cuir",
		"brand":            "Zara",
		"category":         "Women",
		"subcategory":      "Jackets",
		"price":            float32(249.9),
		"original_price":   float64(499.9),
		"quantity":         int64(3),
		"color_quantities": map[string]interface{}{"black": 2, "red": int64(1)},
		"colors":           []interface{}{"black", "red"},
		"is_boosted":       true,
		"ranking_score":    float64(8.5),
		"image_urls":       []string{"a.jpg", "b.jpg"},
		"related_product_ids": []interface{}{"p8", "p9"},
		"created_at":       created,
	})

	if p.Name != "Veste en cuir" || p.Brand != "Zara" {
		t.Errorf("champs texte mal lus: %+v", p)
	}
	if p.Price < 249.8 || p.Price > 250.0 {
		t.Errorf("Price float32: obtenu %v", p.Price)
	}
	if p.Quantity != 3 {
		t.Errorf("Quantity int64: obtenu %d", p.Quantity)
	}
	if p.ColorQuantities["black"] != 2 || p.ColorQuantities["red"] != 1 {
		t.Errorf("ColorQuantities: obtenu %v", p.ColorQuantities)
	}
	if len(p.RelatedProductIDs) != 2 || p.RelatedProductIDs[0] != "p8" {
		t.Errorf("RelatedProductIDs: obtenu %v", p.RelatedProductIDs)
	}
	if !p.IsBoosted || p.RankingScore != 8.5 {
		t.Errorf("signaux de ranking: %+v", p)
	}
	if p.CreatedAt == nil || !p.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt: obtenu %v", p.CreatedAt)
	}
}

func TestInStock(t *testing.T) {
	cases := []struct {
		quantity int
		colors   map[string]int
		want     bool
	}{
		{5, nil, true},
		{0, nil, false},
		{0, map[string]int{"black": 0, "red": 0}, false},
		{0, map[string]int{"black": 0, "red": 1}, true},
	}
	for _, tc := range cases {
		p := Normalize(testProduct("p1", map[string]interface{}{
			"quantity": tc.quantity,
		}))
		p.ColorQuantities = tc.colors
		if p.InStock() != tc.want {
			t.Errorf("InStock(quantity=%d, colors=%v): attendu %v", tc.quantity, tc.colors, tc.want)
		}
	}
}
