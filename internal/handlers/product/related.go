package product

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"velora_back_end/internal/catalog"
	"velora_back_end/internal/config"

	"github.com/gin-gonic/gin"
)

// GetRelatedProducts renvoie les produits associés à une fiche produit.
// GET /api/products/:id/related
func GetRelatedProducts(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("id"))
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit manquant"})
		return
	}

	res, err := catalog.Default.RelatedProducts(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		log.Printf("❌ Erreur produits associés (%s): %v", productID, err)
		payload := gin.H{"error": "Erreur récupération produits associés"}
		if !config.IsProduction() {
			payload["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, payload)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": res.Products,
		"source":   res.Source,
		"count":    len(res.Products),
	})
}
