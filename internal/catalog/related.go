package catalog

import (
	"context"
	"errors"
	"log"

	"velora_back_end/internal/models"
)

// Provenance d'une réponse produits associés / navigation.
const (
	SourcePrecomputed = "precomputed"
	SourceFallback    = "fallback"
	SourceCache       = "cache"
	SourceStale       = "stale"
)

// Taille max d'un batch IN() vers le store.
const relatedBatchSize = 10

// RelatedResult est la valeur mise en cache pour une fiche produit.
type RelatedResult struct {
	Products []models.Product `json:"products"`
	Source   string           `json:"source"`
}

// RelatedProducts retourne la liste ordonnée des produits associés à un
// produit, servie du cache quand c'est possible. Une entrée périmée est
// servie immédiatement pendant qu'une revalidation part en arrière-plan.
func (s *Service) RelatedProducts(ctx context.Context, productID string) (*RelatedResult, error) {
	key := "related:" + productID

	if val, state := s.cache.Get(key); state != StateMiss {
		res := val.(*RelatedResult)
		served := &RelatedResult{Products: res.Products, Source: SourceCache}
		if state == StateStale {
			served.Source = SourceStale
			go s.revalidateRelated(productID)
		}
		return served, nil
	}

	val, err := s.cache.Do(key, func() (interface{}, error) {
		return s.fetchRelated(context.WithoutCancel(ctx), productID)
	})
	if err != nil {
		return nil, err
	}
	return val.(*RelatedResult), nil
}

func (s *Service) revalidateRelated(productID string) {
	key := "related:" + productID
	_, err := s.cache.Do(key, func() (interface{}, error) {
		return s.fetchRelated(context.Background(), productID)
	})
	if err != nil {
		log.Printf("⚠️ Revalidation produits associés échouée pour %s: %v", productID, err)
	}
}

// fetchRelated exécute le planner de repli complet et met le résultat en cache.
func (s *Service) fetchRelated(ctx context.Context, productID string) (*RelatedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	var source models.Product
	err := withRetry(ctx, s.opts.Retries, s.opts.RetryBackoff, func(ctx context.Context) error {
		raw, err := s.store.GetByID(ctx, CollectionProducts, productID)
		if errors.Is(err, ErrNotFound) {
			raw, err = s.store.GetByID(ctx, CollectionShopProducts, productID)
		}
		if err != nil {
			return err
		}
		source = Normalize(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{productID: true}
	var out []models.Product

	// Étape 1 : IDs associés pré-calculés, par lots, l'ordre d'entrée est
	// conservé. Chaque ID absent de la table principale est retenté dans la
	// table secondaire.
	out = s.appendPrecomputed(ctx, source.RelatedProductIDs, seen, out)
	precomputedCount := len(out)
	precomputedFilled := precomputedCount >= s.opts.RelatedTarget

	// Étapes 2 à 5 : requêtes de repli par pertinence décroissante. L'échec
	// d'une étape vaut zéro résultat pour cette étape, jamais un abandon.
	if !precomputedFilled {
		stages := []func(context.Context) ([]RawDocument, error){
			func(ctx context.Context) ([]RawDocument, error) {
				return s.store.QueryByEquality(ctx, CollectionProducts, map[string]interface{}{
					"category":    source.Category,
					"subcategory": source.Subcategory,
					"brand":       source.Brand,
				}, nil, s.opts.RelatedTarget*2)
			},
			func(ctx context.Context) ([]RawDocument, error) {
				return s.store.QueryByEquality(ctx, CollectionProducts, map[string]interface{}{
					"category":    source.Category,
					"subcategory": source.Subcategory,
				}, nil, s.opts.RelatedTarget*2)
			},
			func(ctx context.Context) ([]RawDocument, error) {
				return s.store.QueryByEquality(ctx, CollectionProducts, map[string]interface{}{
					"category": source.Category,
				}, nil, s.opts.RelatedTarget*2)
			},
			func(ctx context.Context) ([]RawDocument, error) {
				return s.store.QueryByRange(ctx, CollectionProducts, "price",
					source.Price*0.7, source.Price*1.3, s.opts.RelatedTarget*2)
			},
		}

		for i, stage := range stages {
			if len(out) >= s.opts.RelatedTarget {
				break
			}
			docs, err := stage(ctx)
			if err != nil {
				log.Printf("⚠️ Étape de repli %d échouée pour %s: %v", i+2, productID, err)
				continue
			}
			out = mergeUnique(out, docs, seen)
		}
	}

	// La provenance est "precomputed" si la liste finale vient entièrement des
	// IDs pré-calculés, que le quota soit atteint ou non
	resultSource := SourceFallback
	if precomputedCount > 0 && len(out) == precomputedCount {
		resultSource = SourcePrecomputed
	}

	result := &RelatedResult{
		Products: s.truncateWithVariety(out),
		Source:   resultSource,
	}
	s.cache.Set("related:"+productID, result)
	return result, nil
}

// appendPrecomputed récupère les IDs pré-calculés par lots de relatedBatchSize
// en préservant leur ordre d'entrée.
func (s *Service) appendPrecomputed(ctx context.Context, ids []string, seen map[string]bool, out []models.Product) []models.Product {
	for start := 0; start < len(ids); start += relatedBatchSize {
		end := start + relatedBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		byID := make(map[string]models.Product, len(chunk))
		docs, err := s.store.QueryByArrayMembership(ctx, CollectionProducts, "product_id", chunk)
		if err != nil {
			log.Printf("⚠️ Batch produits associés échoué: %v", err)
		} else {
			for _, raw := range docs {
				p := Normalize(raw)
				if p.ID != "" {
					byID[p.ID] = p
				}
			}
		}

		for _, id := range chunk {
			if seen[id] {
				continue
			}
			p, ok := byID[id]
			if !ok {
				// Repli par ID dans la table secondaire
				raw, err := s.store.GetByID(ctx, CollectionShopProducts, id)
				if err != nil {
					continue
				}
				p = Normalize(raw)
				if p.ID == "" {
					continue
				}
			}
			seen[id] = true
			out = append(out, p)
		}
	}
	return out
}

// mergeUnique concatène en écartant doublons et documents non exploitables.
// La première occurrence gagne : la priorité des étapes amont est préservée.
func mergeUnique(out []models.Product, docs []RawDocument, seen map[string]bool) []models.Product {
	for _, raw := range docs {
		p := Normalize(raw)
		if p.ID == "" {
			log.Println("⚠️ Document produit sans ID écarté")
			continue
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// truncateWithVariety borne la liste à RelatedMax : la première moitié (la
// plus pertinente) reste fixe, le reste est tiré au hasard parmi les candidats
// restants pour varier les fiches d'un affichage à l'autre.
func (s *Service) truncateWithVariety(products []models.Product) []models.Product {
	max := s.opts.RelatedMax
	if len(products) <= max {
		return products
	}

	fixed := max / 2
	head := products[:fixed]

	tail := make([]models.Product, len(products)-fixed)
	copy(tail, products[fixed:])
	s.shuffle(len(tail), func(i, j int) {
		tail[i], tail[j] = tail[j], tail[i]
	})

	result := make([]models.Product, 0, max)
	result = append(result, head...)
	result = append(result, tail[:max-fixed]...)
	return result
}
