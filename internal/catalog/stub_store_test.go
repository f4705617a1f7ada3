package catalog

import (
	"context"
	"errors"
	"sync"
)

// stubStore est un document store en mémoire pour les tests : il journalise
// les appels et peut simuler le refus d'une requête composite.
type stubStore struct {
	mu           sync.Mutex
	products     map[string]RawDocument
	shopProducts map[string]RawDocument
	order        []string // ordre d'insertion des produits, pour des scans déterministes

	getCalls   int
	eqCalls    int
	rangeCalls int
	batchCalls int

	failEquality func(eq map[string]interface{}) error
}

func newStubStore() *stubStore {
	return &stubStore{
		products:     make(map[string]RawDocument),
		shopProducts: make(map[string]RawDocument),
	}
}

func (s *stubStore) add(collection string, doc RawDocument) {
	id, _ := doc["product_id"].(string)
	if collection == CollectionShopProducts {
		s.shopProducts[id] = doc
		return
	}
	s.products[id] = doc
	s.order = append(s.order, id)
}

func (s *stubStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls + s.eqCalls + s.rangeCalls + s.batchCalls
}

func (s *stubStore) GetByID(ctx context.Context, collection, id string) (RawDocument, error) {
	s.mu.Lock()
	s.getCalls++
	s.mu.Unlock()

	table := s.products
	if collection == CollectionShopProducts {
		table = s.shopProducts
	}
	doc, ok := table[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *stubStore) QueryByEquality(ctx context.Context, collection string, eq map[string]interface{}, push *PushDown, limit int) ([]RawDocument, error) {
	s.mu.Lock()
	s.eqCalls++
	fail := s.failEquality
	s.mu.Unlock()

	if fail != nil {
		if err := fail(eq); err != nil {
			return nil, err
		}
	}

	var out []RawDocument
	for _, id := range s.order {
		doc := s.products[id]
		if !matchesEq(doc, eq) {
			continue
		}
		if push != nil {
			if push.InStockOnly && rawInt(doc, "quantity") <= 0 {
				continue
			}
			price := rawFloat(doc, "price")
			if push.MinPrice != nil && price < *push.MinPrice {
				continue
			}
			if push.MaxPrice != nil && price > *push.MaxPrice {
				continue
			}
		}
		out = append(out, doc)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubStore) QueryByRange(ctx context.Context, collection, field string, min, max float64, limit int) ([]RawDocument, error) {
	s.mu.Lock()
	s.rangeCalls++
	s.mu.Unlock()

	var out []RawDocument
	for _, id := range s.order {
		doc := s.products[id]
		v := rawFloat(doc, field)
		if v < min || v > max {
			continue
		}
		out = append(out, doc)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *stubStore) QueryByArrayMembership(ctx context.Context, collection, field string, values []string) ([]RawDocument, error) {
	s.mu.Lock()
	s.batchCalls++
	s.mu.Unlock()

	table := s.products
	if collection == CollectionShopProducts {
		table = s.shopProducts
	}

	var out []RawDocument
	for _, doc := range table {
		v := rawString(doc, field)
		for _, want := range values {
			if v == want {
				out = append(out, doc)
				break
			}
		}
	}
	return out, nil
}

func matchesEq(doc RawDocument, eq map[string]interface{}) bool {
	for field, want := range eq {
		if rawString(doc, field) != want.(string) {
			return false
		}
	}
	return true
}

var errNoIndex = errors.New("cannot execute this query: use ALLOW FILTERING")

func testProduct(id string, over map[string]interface{}) RawDocument {
	doc := RawDocument{
		"product_id":  id,
		"name":        "Produit " + id,
		"category":    "Shoes",
		"subcategory": "Sneakers",
		"brand":       "Acme",
		"price":       float64(100),
		"currency":    "TL",
		"quantity":    5,
	}
	for k, v := range over {
		doc[k] = v
	}
	return doc
}
