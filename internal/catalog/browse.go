package catalog

import (
	"context"
	"log"
	"sort"
	"strings"

	"velora_back_end/internal/models"
)

// BrowseResult est la page de navigation mise en cache par fingerprint.
type BrowseResult struct {
	Products []models.Product `json:"products"`
	HasMore  bool             `json:"hasMore"`
	Page     int              `json:"page"`
	Total    int              `json:"total"`
	Source   string           `json:"source"`
}

// Nombre de documents demandés au store pour une page de navigation : le
// filtrage côté client en écarte une partie, on sur-échantillonne.
const browseFetchLimit = 500

// CategoryProducts répond à une requête de navigation catégorie : requête(s)
// vers le store, filtrage/tri côté client, pagination, le tout mémoïsé par
// fingerprint avec stale-while-revalidate.
func (s *Service) CategoryProducts(ctx context.Context, f Filters) (*BrowseResult, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f = f.Canonical(s.opts.MaxPageSize)
	key := "browse:" + f.Fingerprint()

	if val, state := s.cache.Get(key); state != StateMiss {
		res := val.(*BrowseResult)
		served := *res
		served.Source = SourceCache
		if state == StateStale {
			served.Source = SourceStale
			go s.revalidateBrowse(f)
		}
		return &served, nil
	}

	val, err := s.cache.Do(key, func() (interface{}, error) {
		return s.fetchBrowse(context.WithoutCancel(ctx), f)
	})
	if err != nil {
		return nil, err
	}
	return val.(*BrowseResult), nil
}

func (s *Service) revalidateBrowse(f Filters) {
	key := "browse:" + f.Fingerprint()
	_, err := s.cache.Do(key, func() (interface{}, error) {
		return s.fetchBrowse(context.Background(), f)
	})
	if err != nil {
		log.Printf("⚠️ Revalidation navigation échouée (%s): %v", f.Fingerprint(), err)
	}
}

func (s *Service) fetchBrowse(ctx context.Context, f Filters) (*BrowseResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	var docs []RawDocument
	err := withRetry(ctx, s.opts.Retries, s.opts.RetryBackoff, func(ctx context.Context) error {
		var err error
		docs, err = s.queryCategory(ctx, f)
		return err
	})
	degraded := false
	if err != nil {
		if isPermissionError(err) {
			return nil, err
		}
		// Panne persistante du store : page vide plutôt qu'une erreur au front
		log.Printf("⚠️ Requête navigation échouée (%s): %v", f.Fingerprint(), err)
		docs = nil
		degraded = true
	}

	products := make([]models.Product, 0, len(docs))
	for _, raw := range docs {
		p := Normalize(raw)
		if p.ID == "" {
			log.Println("⚠️ Document produit sans ID écarté")
			continue
		}
		products = append(products, p)
	}

	products = applyFilters(products, f)
	rank(products)

	total := len(products)
	start := f.Page * f.Limit
	end := start + f.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	result := &BrowseResult{
		Products: products[start:end],
		HasMore:  total > (f.Page+1)*f.Limit,
		Page:     f.Page,
		Total:    total,
		Source:   SourceFallback,
	}
	// Une page dégradée n'est pas mémoïsée : le prochain appel retentera
	if !degraded {
		s.cache.Set("browse:"+f.Fingerprint(), result)
	}
	return result, nil
}

// Catégories qui sont en réalité des buckets de genre : on interroge le
// bucket exact et le bucket partagé "Unisex" en parallèle.
var genderBuckets = map[string]bool{"Women": true, "Men": true}

func (s *Service) queryCategory(ctx context.Context, f Filters) ([]RawDocument, error) {
	push := &PushDown{InStockOnly: true, MinPrice: f.MinPrice, MaxPrice: f.MaxPrice}

	if genderBuckets[f.Category] {
		type queryOut struct {
			docs []RawDocument
			err  error
		}

		exact := make(chan queryOut, 1)
		unisex := make(chan queryOut, 1)

		go func() {
			docs, err := s.queryWithFallback(ctx, f.Category, f, push)
			exact <- queryOut{docs, err}
		}()
		go func() {
			docs, err := s.queryWithFallback(ctx, "Unisex", f, push)
			unisex <- queryOut{docs, err}
		}()

		a, b := <-exact, <-unisex
		if a.err != nil && b.err != nil {
			return nil, a.err
		}
		if a.err != nil {
			log.Printf("⚠️ Requête bucket %s échouée: %v", f.Category, a.err)
		}
		if b.err != nil {
			log.Printf("⚠️ Requête bucket Unisex échouée: %v", b.err)
		}

		// Dé-duplication par ID, la première occurrence gagne (bucket exact
		// avant Unisex pour un ordre déterministe).
		seen := make(map[string]bool)
		var merged []RawDocument
		for _, docs := range [][]RawDocument{a.docs, b.docs} {
			for _, raw := range docs {
				id := rawString(raw, "product_id")
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true
				merged = append(merged, raw)
			}
		}
		return merged, nil
	}

	return s.queryWithFallback(ctx, f.Category, f, push)
}

// queryWithFallback tente la requête composite complète puis, si le store la
// refuse (index composite manquant), retombe sur la catégorie seule.
func (s *Service) queryWithFallback(ctx context.Context, category string, f Filters, push *PushDown) ([]RawDocument, error) {
	eq := map[string]interface{}{"category": category}
	if f.Subcategory != "" {
		eq["subcategory"] = f.Subcategory
	}
	if f.SubSubcategory != "" {
		eq["sub_subcategory"] = f.SubSubcategory
	}

	docs, err := s.store.QueryByEquality(ctx, CollectionProducts, eq, push, browseFetchLimit)
	if err == nil || len(eq) == 1 {
		return docs, err
	}

	log.Printf("⚠️ Requête composite refusée (%v), repli sur la catégorie seule: %v", eq, err)
	return s.store.QueryByEquality(ctx, CollectionProducts,
		map[string]interface{}{"category": category}, push, browseFetchLimit)
}

// applyFilters applique côté client ce que le store n'exprime pas : le
// matching de taxonomie par sous-chaîne bidirectionnelle (tolérant à la
// dérive de nommage entre valeurs stockées et demandées) et les bornes de
// prix quand elles n'ont pas pu être poussées.
func applyFilters(products []models.Product, f Filters) []models.Product {
	out := products[:0]
	for _, p := range products {
		// La sous-catégorie du chemin est re-vérifiée ici : si le store a
		// refusé la requête composite, le repli catégorie seule renvoie
		// toutes les sous-catégories confondues
		if f.Subcategory != "" && !looseMatch(p.Subcategory, f.Subcategory) {
			continue
		}
		if f.SubSubcategory != "" && !looseMatch(p.SubSubcategory, f.SubSubcategory) {
			continue
		}
		if len(f.Subcategories) > 0 && !matchesAny(p.Subcategory, f.Subcategories) {
			continue
		}
		if len(f.Brands) > 0 && !matchesAny(p.Brand, f.Brands) {
			continue
		}
		if len(f.Colors) > 0 && !colorMatches(p, f.Colors) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out
}

func colorMatches(p models.Product, filters []string) bool {
	for _, color := range p.Colors {
		if matchesAny(color, filters) {
			return true
		}
	}
	for color := range p.ColorQuantities {
		if matchesAny(color, filters) {
			return true
		}
	}
	return false
}

func matchesAny(value string, filters []string) bool {
	for _, filter := range filters {
		if looseMatch(value, filter) {
			return true
		}
	}
	return false
}

// looseMatch : deux valeurs se correspondent si l'une contient l'autre après
// normalisation casse/espaces.
func looseMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// rank trie par mise en avant puis score décroissant. Tri stable : à égalité,
// l'ordre d'entrée est conservé d'un appel à l'autre.
func rank(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].IsBoosted != products[j].IsBoosted {
			return products[i].IsBoosted
		}
		return products[i].RankingScore > products[j].RankingScore
	})
}
