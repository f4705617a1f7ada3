package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"velora_back_end/internal/models"
)

func TestBrowseInvalidPriceRangeNeverQueriesStore(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store)

	_, err := svc.CategoryProducts(context.Background(), Filters{
		Category: "Women",
		MinPrice: floatPtr(100),
		MaxPrice: floatPtr(10),
	})
	if !errors.Is(err, ErrInvalidFilters) {
		t.Fatalf("attendu ErrInvalidFilters, obtenu %v", err)
	}
	if store.calls() != 0 {
		t.Fatal("le store a été requêté malgré des filtres invalides")
	}
}

func TestBrowseMissingCategory(t *testing.T) {
	svc := newTestService(newStubStore())
	_, err := svc.CategoryProducts(context.Background(), Filters{})
	if !errors.Is(err, ErrInvalidFilters) {
		t.Fatalf("attendu ErrInvalidFilters, obtenu %v", err)
	}
}

func TestBrowsePaginationExample(t *testing.T) {
	// 45 produits "Women" en stock, page 0, limit 20 → 20 produits,
	// hasMore=true, total=45
	store := newStubStore()
	for i := 0; i < 45; i++ {
		store.add(CollectionProducts, testProduct(fmt.Sprintf("w%d", i), map[string]interface{}{
			"category": "Women",
			"gender":   "women",
		}))
	}
	svc := newTestService(store)

	res, err := svc.CategoryProducts(context.Background(), Filters{
		Category: "women",
		Page:     0,
		Limit:    20,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Products) != 20 {
		t.Errorf("page 0: attendu 20 produits, obtenu %d", len(res.Products))
	}
	if !res.HasMore {
		t.Error("hasMore: attendu true")
	}
	if res.Total != 45 {
		t.Errorf("total: attendu 45, obtenu %d", res.Total)
	}

	// Dernière page partielle
	res, err = svc.CategoryProducts(context.Background(), Filters{
		Category: "women",
		Page:     2,
		Limit:    20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Products) != 5 {
		t.Errorf("page 2: attendu 5 produits, obtenu %d", len(res.Products))
	}
	if res.HasMore {
		t.Error("hasMore sur la dernière page: attendu false")
	}

	// Page au-delà de la fin
	res, err = svc.CategoryProducts(context.Background(), Filters{
		Category: "women",
		Page:     9,
		Limit:    20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Products) != 0 || res.HasMore {
		t.Errorf("page hors bornes: attendu vide, obtenu %d produits hasMore=%v",
			len(res.Products), res.HasMore)
	}
}

func TestBrowseGenderBucketMergesUnisex(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("w1", map[string]interface{}{
		"category": "Women",
	}))
	store.add(CollectionProducts, testProduct("u1", map[string]interface{}{
		"category": "Unisex",
	}))
	store.add(CollectionProducts, testProduct("m1", map[string]interface{}{
		"category": "Men",
	}))
	svc := newTestService(store)

	res, err := svc.CategoryProducts(context.Background(), Filters{Category: "women", Limit: 20})
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]bool{}
	for _, p := range res.Products {
		got[p.ID] = true
	}
	if !got["w1"] || !got["u1"] {
		t.Errorf("bucket genre: w1 et u1 attendus, obtenu %v", got)
	}
	if got["m1"] {
		t.Error("produit Men renvoyé pour le bucket women")
	}
}

func TestBrowseExcludesOutOfStockAtSource(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("s1", map[string]interface{}{
		"category": "Shoes",
	}))
	store.add(CollectionProducts, testProduct("s2", map[string]interface{}{
		"category": "Shoes",
		"quantity": 0,
	}))
	svc := newTestService(store)

	res, err := svc.CategoryProducts(context.Background(), Filters{Category: "shoes", Limit: 20})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.Products[0].ID != "s1" {
		t.Errorf("produit en rupture non exclu: %v", ids(res.Products))
	}
}

func TestBrowseSubstringTolerantFilters(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("b1", map[string]interface{}{
		"category":    "Bags",
		"subcategory": "Hand Bags",
		"brand":       "Louis Vuitton Paris",
		"colors":      []string{"Dark Red"},
	}))
	store.add(CollectionProducts, testProduct("b2", map[string]interface{}{
		"category":    "Bags",
		"subcategory": "Backpacks",
		"brand":       "Acme",
		"colors":      []string{"Blue"},
	}))
	svc := newTestService(store)

	// "hand bags" ⊂ stocké, "vuitton" ⊂ marque, "red" ⊂ "Dark Red" : tous
	// matchent par containment bidirectionnel insensible à la casse
	res, err := svc.CategoryProducts(context.Background(), Filters{
		Category:      "bags",
		Subcategories: []string{"hand bags"},
		Brands:        []string{"  vuitton "},
		Colors:        []string{"RED"},
		Limit:         20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.Products[0].ID != "b1" {
		t.Errorf("matching par sous-chaîne: obtenu %v", ids(res.Products))
	}
}

func TestRankBoostThenScoreStable(t *testing.T) {
	products := []models.Product{
		{ID: "a", IsBoosted: false, RankingScore: 9},
		{ID: "b", IsBoosted: true, RankingScore: 1},
		{ID: "c", IsBoosted: true, RankingScore: 5},
		{ID: "d", IsBoosted: false, RankingScore: 9}, // égalité avec a
		{ID: "e", IsBoosted: false},                  // score absent = 0
	}

	rank(products)

	want := []string{"c", "b", "a", "d", "e"}
	for i, id := range want {
		if products[i].ID != id {
			t.Fatalf("ordre de ranking: attendu %v, obtenu %v", want, ids(products))
		}
	}

	// Stabilité : re-trier ne change rien
	rank(products)
	for i, id := range want {
		if products[i].ID != id {
			t.Fatalf("tri instable au second passage: %v", ids(products))
		}
	}
}

func TestBrowseServedFromCache(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("s1", map[string]interface{}{
		"category": "Shoes",
	}))
	svc := newTestService(store)

	f := Filters{Category: "shoes", Limit: 20}
	if _, err := svc.CategoryProducts(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := store.calls()

	res, err := svc.CategoryProducts(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceCache {
		t.Errorf("source: attendu cache, obtenu %s", res.Source)
	}
	if store.calls() != callsAfterFirst {
		t.Error("le store a été re-requêté dans la fenêtre TTL")
	}

	// L'ordre des listes ne change pas la clé : servi du cache aussi
	res, err = svc.CategoryProducts(context.Background(), Filters{
		Category: "shoes", Limit: 20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if store.calls() != callsAfterFirst {
		t.Error("fingerprint instable entre deux appels identiques")
	}
}

func TestBrowseCompositeRefusedFallsBackToCategory(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("s1", map[string]interface{}{
		"category":    "Shoes",
		"subcategory": "Sneakers",
	}))
	store.failEquality = func(eq map[string]interface{}) error {
		if len(eq) > 1 {
			return errNoIndex
		}
		return nil
	}
	svc := newTestService(store)

	res, err := svc.CategoryProducts(context.Background(), Filters{
		Category:    "shoes",
		Subcategory: "sneakers",
		Limit:       20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 {
		t.Errorf("repli sur catégorie seule: obtenu %v", ids(res.Products))
	}
}

func TestBrowseDegradedFallbackRefiltersSubcategory(t *testing.T) {
	// Le store refuse les requêtes composites : le repli catégorie seule
	// renvoie toutes les sous-catégories, le filtrage côté client doit
	// écarter celles qui ne matchent pas le chemin demandé
	store := newStubStore()
	store.add(CollectionProducts, testProduct("sneak1", map[string]interface{}{
		"category":    "Shoes",
		"subcategory": "Sneakers",
	}))
	store.add(CollectionProducts, testProduct("boot1", map[string]interface{}{
		"category":    "Shoes",
		"subcategory": "Boots",
	}))
	store.failEquality = func(eq map[string]interface{}) error {
		if len(eq) > 1 {
			return errNoIndex
		}
		return nil
	}
	svc := newTestService(store)

	res, err := svc.CategoryProducts(context.Background(), Filters{
		Category:    "shoes",
		Subcategory: "sneakers",
		Limit:       20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.Products[0].ID != "sneak1" {
		t.Fatalf("sous-catégorie non re-filtrée après repli: %v", ids(res.Products))
	}

	res, err = svc.CategoryProducts(context.Background(), Filters{
		Category:       "shoes",
		Subcategory:    "sneakers",
		SubSubcategory: "running",
		Limit:          20,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 0 {
		t.Fatalf("sous-sous-catégorie non re-filtrée après repli: %v", ids(res.Products))
	}
}

func TestInvalidateCategory(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("s1", map[string]interface{}{
		"category": "Shoes",
	}))
	svc := newTestService(store)

	f := Filters{Category: "shoes", Limit: 20}
	if _, err := svc.CategoryProducts(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := store.calls()

	svc.InvalidateCategory("shoes")

	if _, err := svc.CategoryProducts(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if store.calls() == callsAfterFirst {
		t.Error("l'invalidation n'a pas purgé l'entrée de navigation")
	}
}
