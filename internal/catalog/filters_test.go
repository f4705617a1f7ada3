package catalog

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestFingerprintOrderIndependent(t *testing.T) {
	a := Filters{
		Category: "Women",
		Colors:   []string{"Red", "black", " Blue "},
		Brands:   []string{"Zara", "Acme"},
		Page:     1,
		Limit:    20,
	}
	b := Filters{
		Category: "Women",
		Colors:   []string{"blue", "RED", "Black"},
		Brands:   []string{"acme", "zara"},
		Page:     1,
		Limit:    20,
	}

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("fingerprints différents pour le même jeu de filtres:\n%s\n%s",
			a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprintDistinguishesFilters(t *testing.T) {
	base := Filters{Category: "Women", Page: 0, Limit: 20}
	variants := []Filters{
		{Category: "Men", Page: 0, Limit: 20},
		{Category: "Women", Page: 1, Limit: 20},
		{Category: "Women", Page: 0, Limit: 10},
		{Category: "Women", MinPrice: floatPtr(50), Page: 0, Limit: 20},
		{Category: "Women", Colors: []string{"red"}, Page: 0, Limit: 20},
	}
	for _, v := range variants {
		if v.Fingerprint() == base.Fingerprint() {
			t.Errorf("fingerprint identique pour des filtres différents: %+v", v)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (Filters{Category: "Women"}).Validate(); err != nil {
		t.Errorf("filtres valides rejetés: %v", err)
	}
	if err := (Filters{}).Validate(); err == nil {
		t.Error("catégorie absente acceptée")
	}
	if err := (Filters{Category: "Women", Page: -1}).Validate(); err == nil {
		t.Error("page négative acceptée")
	}
	bad := Filters{Category: "Women", MinPrice: floatPtr(100), MaxPrice: floatPtr(10)}
	if err := bad.Validate(); err == nil {
		t.Error("minPrice > maxPrice accepté")
	}
}

func TestCanonicalClampsLimit(t *testing.T) {
	c := Filters{Category: "women", Limit: 900}.Canonical(50)
	if c.Limit != 50 {
		t.Errorf("limit non bornée: %d", c.Limit)
	}
	c = Filters{Category: "women"}.Canonical(50)
	if c.Limit != 50 {
		t.Errorf("limit zéro non remplacée: %d", c.Limit)
	}
}

func TestDisplayForm(t *testing.T) {
	cases := map[string]string{
		"summer-dresses":  "Summer Dresses",
		"women":           "Women",
		"SHOES":           "Shoes",
		"  hand bags ":    "Hand Bags",
		"t-shirts-basic":  "T Shirts Basic",
		"":                "",
	}
	for in, want := range cases {
		if got := DisplayForm(in); got != want {
			t.Errorf("DisplayForm(%q) = %q, attendu %q", in, got, want)
		}
	}
}
