package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"time"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const productIndex = "products"

// IndexProduct pousse une fiche produit dans Elasticsearch.
// Appelé en goroutine après la création : l'indexation ne doit jamais
// bloquer la réponse au vendeur.
func IndexProduct(p models.Product) {
	if database.Elastic == nil {
		return
	}

	body, err := json.Marshal(p)
	if err != nil {
		log.Printf("❌ Erreur sérialisation produit %s: %v", p.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := esapi.IndexRequest{
		Index:      productIndex,
		DocumentID: p.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, database.Elastic)
	if err != nil {
		log.Printf("❌ Erreur indexation Elasticsearch produit %s: %v", p.ID, err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elasticsearch a refusé le produit %s: %s", p.ID, res.String())
	}
}

// DeleteProductIndex retire une fiche de l'index après suppression.
func DeleteProductIndex(productID string) {
	if database.Elastic == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := esapi.DeleteRequest{
		Index:      productIndex,
		DocumentID: productID,
	}
	res, err := req.Do(ctx, database.Elastic)
	if err != nil {
		log.Printf("❌ Erreur suppression index produit %s: %v", productID, err)
		return
	}
	res.Body.Close()
}

// SearchProducts exécute une requête brute contre l'index produits et
// renvoie le statut + corps Elasticsearch tels quels. Le handler proxy
// les retransmet au front sans exposer la clé API.
func SearchProducts(ctx context.Context, query []byte) (int, []byte, error) {
	res, err := database.Elastic.Search(
		database.Elastic.Search.WithContext(ctx),
		database.Elastic.Search.WithIndex(productIndex),
		database.Elastic.Search.WithBody(bytes.NewReader(query)),
	)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return 0, nil, err
	}
	return res.StatusCode, buf.Bytes(), nil
}
