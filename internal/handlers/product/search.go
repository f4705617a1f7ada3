package product

import (
	"io"
	"net/http"

	"velora_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// SearchProxy relaie une requête de recherche brute vers Elasticsearch.
// La clé API reste côté serveur : le front passe toujours par ce proxy.
// POST /api/search
func SearchProxy(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Corps de requête illisible"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête de recherche vide"})
		return
	}

	status, result, err := services.SearchProducts(c.Request.Context(), body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Recherche indisponible"})
		return
	}

	// On retransmet le statut et le corps Elasticsearch tels quels
	c.Data(status, "application/json", result)
}
