package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"velora_back_end/internal/database"

	"github.com/gocql/gocql"
)

// Collections interrogées par la couche catalogue. Les produits publiés par
// l'assistant vendeur vivent dans "products" ; "shop_products" est l'ancienne
// table boutique, conservée comme source secondaire pour les IDs pré-calculés.
const (
	CollectionProducts     = "products"
	CollectionShopProducts = "shop_products"
)

var ErrNotFound = errors.New("document introuvable")

// RawDocument est une ligne brute telle que renvoyée par le store, avant
// normalisation. Aucun champ n'est garanti présent ni bien typé.
type RawDocument map[string]interface{}

// PushDown porte les prédicats que le store sait évaluer côté serveur.
// Tout ce qui n'est pas poussé ici est re-filtré côté client.
type PushDown struct {
	MinPrice    *float64
	MaxPrice    *float64
	InStockOnly bool
}

// Store est le contrat d'accès au document store. Une requête combinant
// plusieurs égalités peut échouer faute d'index composite : l'appelant doit
// tolérer l'échec et retomber sur une requête plus simple.
type Store interface {
	GetByID(ctx context.Context, collection, id string) (RawDocument, error)
	QueryByEquality(ctx context.Context, collection string, eq map[string]interface{}, push *PushDown, limit int) ([]RawDocument, error)
	QueryByRange(ctx context.Context, collection, field string, min, max float64, limit int) ([]RawDocument, error)
	QueryByArrayMembership(ctx context.Context, collection, field string, values []string) ([]RawDocument, error)
}

// ScyllaStore implémente Store au-dessus du keyspace catalogue.
type ScyllaStore struct{}

func NewScyllaStore() *ScyllaStore {
	return &ScyllaStore{}
}

func (s *ScyllaStore) session() (*gocql.Session, error) {
	return database.GetProductsSession()
}

func (s *ScyllaStore) GetByID(ctx context.Context, collection, id string) (RawDocument, error) {
	session, err := s.session()
	if err != nil {
		return nil, err
	}

	doc := make(RawDocument)
	q := fmt.Sprintf("SELECT * FROM %s WHERE product_id = ?", collection)
	if err := session.Query(q, id).WithContext(ctx).MapScan(doc); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *ScyllaStore) QueryByEquality(ctx context.Context, collection string, eq map[string]interface{}, push *PushDown, limit int) ([]RawDocument, error) {
	session, err := s.session()
	if err != nil {
		return nil, err
	}

	var (
		preds  []string
		values []interface{}
	)
	for field, value := range eq {
		preds = append(preds, field+" = ?")
		values = append(values, value)
	}
	if push != nil {
		if push.InStockOnly {
			preds = append(preds, "quantity > 0")
		}
		if push.MinPrice != nil {
			preds = append(preds, "price >= ?")
			values = append(values, *push.MinPrice)
		}
		if push.MaxPrice != nil {
			preds = append(preds, "price <= ?")
			values = append(values, *push.MaxPrice)
		}
	}

	q := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT %d ALLOW FILTERING",
		collection, strings.Join(preds, " AND "), limit)

	return s.scanAll(session.Query(q, values...).WithContext(ctx).Iter())
}

func (s *ScyllaStore) QueryByRange(ctx context.Context, collection, field string, min, max float64, limit int) ([]RawDocument, error) {
	session, err := s.session()
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("SELECT * FROM %s WHERE %s >= ? AND %s <= ? LIMIT %d ALLOW FILTERING",
		collection, field, field, limit)

	return s.scanAll(session.Query(q, min, max).WithContext(ctx).Iter())
}

func (s *ScyllaStore) QueryByArrayMembership(ctx context.Context, collection, field string, values []string) ([]RawDocument, error) {
	session, err := s.session()
	if err != nil {
		return nil, err
	}

	in := make([]interface{}, len(values))
	placeholders := make([]string, len(values))
	for i, v := range values {
		in[i] = v
		placeholders[i] = "?"
	}

	q := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)",
		collection, field, strings.Join(placeholders, ", "))

	return s.scanAll(session.Query(q, in...).WithContext(ctx).Iter())
}

func (s *ScyllaStore) scanAll(iter *gocql.Iter) ([]RawDocument, error) {
	var docs []RawDocument
	for {
		doc := make(RawDocument)
		if !iter.MapScan(doc) {
			break
		}
		docs = append(docs, doc)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return docs, nil
}
