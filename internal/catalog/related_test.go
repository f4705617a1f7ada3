package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"velora_back_end/internal/models"
)

func newTestService(store Store) *Service {
	return New(store, Options{
		FreshTTL:      time.Minute,
		StaleTTL:      time.Hour,
		MaxEntries:    30,
		RelatedTarget: 15,
		RelatedMax:    15,
		MaxPageSize:   50,
		FetchTimeout:  2 * time.Second,
		Retries:       1,
		RetryBackoff:  time.Millisecond,
		Rand:          rand.New(rand.NewSource(42)),
	})
}

func TestRelatedPrecomputedPreservesOrder(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("p1", map[string]interface{}{
		"related_product_ids": []string{"p2", "p3"},
	}))
	store.add(CollectionProducts, testProduct("p2", nil))
	store.add(CollectionProducts, testProduct("p3", nil))

	svc := newTestService(store)
	res, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Products) < 2 || res.Products[0].ID != "p2" || res.Products[1].ID != "p3" {
		t.Fatalf("ordre pré-calculé non conservé: %v", ids(res.Products))
	}
}

func TestRelatedNeverContainsSourceID(t *testing.T) {
	store := newStubStore()
	// p1 se référence lui-même dans sa liste pré-calculée et matchera
	// toutes les étapes de repli
	store.add(CollectionProducts, testProduct("p1", map[string]interface{}{
		"related_product_ids": []string{"p1", "p2"},
	}))
	store.add(CollectionProducts, testProduct("p2", nil))
	store.add(CollectionProducts, testProduct("p3", nil))

	svc := newTestService(store)
	res, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range res.Products {
		if p.ID == "p1" {
			t.Fatal("le produit source figure dans ses propres produits associés")
		}
	}
}

func TestRelatedSecondaryCollectionFallbackPerID(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("p1", map[string]interface{}{
		"related_product_ids": []string{"p2", "p9"},
	}))
	store.add(CollectionProducts, testProduct("p2", nil))
	// p9 n'existe que dans la table secondaire
	store.add(CollectionShopProducts, testProduct("p9", nil))

	svc := newTestService(store)
	res, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}

	got := ids(res.Products)
	if len(got) < 2 || got[0] != "p2" || got[1] != "p9" {
		t.Fatalf("repli secondaire par ID: obtenu %v", got)
	}
}

func TestRelatedMergeUniquePrecedence(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("p1", nil))
	// p2 matche marque+sous-catégorie (étape 2) ET les étapes plus larges :
	// sa position doit refléter l'étape 2
	store.add(CollectionProducts, testProduct("p2", nil))
	// p3 ne matche que la catégorie (étape 4)
	store.add(CollectionProducts, testProduct("p3", map[string]interface{}{
		"subcategory": "Boots",
		"brand":       "Autre",
	}))
	// p4 matche la sous-catégorie sans la marque (étape 3)
	store.add(CollectionProducts, testProduct("p4", map[string]interface{}{
		"brand": "Autre",
	}))

	svc := newTestService(store)
	res, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}

	got := ids(res.Products)
	if len(got) != 3 {
		t.Fatalf("doublons ou résultats manquants: %v", got)
	}
	pos := map[string]int{}
	for i, id := range got {
		if _, dup := pos[id]; dup {
			t.Fatalf("doublon %s dans %v", id, got)
		}
		pos[id] = i
	}
	if !(pos["p2"] < pos["p4"] && pos["p4"] < pos["p3"]) {
		t.Fatalf("précédence des étapes non respectée: %v", got)
	}
	if res.Source != SourceFallback {
		t.Errorf("source: attendu fallback, obtenu %s", res.Source)
	}
}

func TestRelatedStageFailureFallsThrough(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("p1", nil))
	store.add(CollectionProducts, testProduct("p2", nil))
	// Les requêtes composites (plus d'un champ) échouent faute d'index :
	// le planner doit continuer avec les étapes plus simples
	store.failEquality = func(eq map[string]interface{}) error {
		if len(eq) > 1 {
			return errNoIndex
		}
		return nil
	}

	svc := newTestService(store)
	res, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Products) != 1 || res.Products[0].ID != "p2" {
		t.Fatalf("le repli n'a pas survécu aux étapes en échec: %v", ids(res.Products))
	}
}

func TestRelatedServedFromCacheWithinTTL(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("p1", map[string]interface{}{
		"related_product_ids": []string{"p2"},
	}))
	store.add(CollectionProducts, testProduct("p2", nil))

	svc := newTestService(store)

	first, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := store.calls()

	second, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}

	if second.Source != SourceCache {
		t.Errorf("source du second appel: attendu cache, obtenu %s", second.Source)
	}
	if store.calls() != callsAfterFirst {
		t.Error("le second appel a requêté le store malgré le cache")
	}
	if fmt.Sprint(ids(first.Products)) != fmt.Sprint(ids(second.Products)) {
		t.Errorf("réponses différentes dans la fenêtre TTL: %v vs %v",
			ids(first.Products), ids(second.Products))
	}
}

func TestRelatedStaleServedThenRevalidated(t *testing.T) {
	store := newStubStore()
	store.add(CollectionProducts, testProduct("p1", map[string]interface{}{
		"related_product_ids": []string{"p2"},
	}))
	store.add(CollectionProducts, testProduct("p2", nil))

	svc := New(store, Options{
		FreshTTL:      20 * time.Millisecond,
		StaleTTL:      time.Hour,
		MaxEntries:    30,
		FetchTimeout:  2 * time.Second,
		Retries:       1,
		RetryBackoff:  time.Millisecond,
		RelatedTarget: 15,
		MaxPageSize:   50,
		Rand:          rand.New(rand.NewSource(1)),
	})

	if _, err := svc.RelatedProducts(context.Background(), "p1"); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := store.calls()

	time.Sleep(40 * time.Millisecond)

	res, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceStale {
		t.Fatalf("entrée vieillissante: attendu stale, obtenu %s", res.Source)
	}

	// La revalidation part en arrière-plan et re-requête le store
	deadline := time.Now().Add(2 * time.Second)
	for store.calls() == callsAfterFirst {
		if time.Now().After(deadline) {
			t.Fatal("aucune revalidation en arrière-plan observée")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRelatedNotFound(t *testing.T) {
	svc := newTestService(newStubStore())
	_, err := svc.RelatedProducts(context.Background(), "absent")
	if err != ErrNotFound {
		t.Fatalf("attendu ErrNotFound, obtenu %v", err)
	}
}

func TestTruncateWithVarietyKeepsFixedPrefix(t *testing.T) {
	store := newStubStore()
	candidates := []string{"p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10", "p11"}
	store.add(CollectionProducts, testProduct("p1", map[string]interface{}{
		"related_product_ids": candidates,
	}))
	for _, id := range candidates {
		store.add(CollectionProducts, testProduct(id, nil))
	}

	svc := New(store, Options{
		FreshTTL:      time.Minute,
		StaleTTL:      time.Hour,
		MaxEntries:    30,
		RelatedTarget: 6,
		RelatedMax:    6,
		MaxPageSize:   50,
		FetchTimeout:  2 * time.Second,
		Retries:       1,
		RetryBackoff:  time.Millisecond,
		Rand:          rand.New(rand.NewSource(42)),
	})

	res, err := svc.RelatedProducts(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourcePrecomputed {
		t.Errorf("source: attendu precomputed, obtenu %s", res.Source)
	}

	got := ids(res.Products)
	if len(got) != 6 {
		t.Fatalf("troncature: attendu 6, obtenu %d (%v)", len(got), got)
	}

	// La première moitié reste fixe dans l'ordre de précédence
	for i, want := range []string{"p2", "p3", "p4"} {
		if got[i] != want {
			t.Fatalf("préfixe fixe cassé à l'index %d: %v", i, got)
		}
	}

	// Le reste vient des candidats plus bas, sans doublon
	seen := map[string]bool{}
	allowed := map[string]bool{}
	for _, id := range candidates[3:] {
		allowed[id] = true
	}
	for _, id := range got[3:] {
		if seen[id] {
			t.Fatalf("doublon %s après troncature: %v", id, got)
		}
		seen[id] = true
		if !allowed[id] {
			t.Fatalf("candidat inattendu %s dans la portion mélangée: %v", id, got)
		}
	}
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
