package product

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"velora_back_end/internal/catalog"
	"velora_back_end/internal/config"

	"github.com/gin-gonic/gin"
)

// GetCategoryProducts renvoie une page de navigation catégorie filtrée/triée.
// GET /api/products/category?category=&subcategory=&subsubcategory=&page=&limit=
//
//	&filterSubcategories=&colors=&brands=&minPrice=&maxPrice=
func GetCategoryProducts(c *gin.Context) {
	filters := catalog.Filters{
		Category:       c.Query("category"),
		Subcategory:    c.Query("subcategory"),
		SubSubcategory: c.Query("subsubcategory"),
		Subcategories:  splitList(c.Query("filterSubcategories")),
		Colors:         splitList(c.Query("colors")),
		Brands:         splitList(c.Query("brands")),
	}

	if v := c.Query("minPrice"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minPrice invalide"})
			return
		}
		filters.MinPrice = &n
	}
	if v := c.Query("maxPrice"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice invalide"})
			return
		}
		filters.MaxPrice = &n
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	res, err := catalog.Default.CategoryProducts(c.Request.Context(), filters)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidFilters) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if isPermissionStatus(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé par le store"})
			return
		}
		log.Printf("❌ Erreur navigation catégorie: %v", err)
		payload := gin.H{"error": "Erreur récupération produits"}
		if !config.IsProduction() {
			payload["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, payload)
		return
	}

	// Les CDN/navigateurs peuvent servir une réponse un peu vieille pendant
	// que l'origine revalide, même modèle que le cache interne
	c.Header("Cache-Control", "public, max-age=60, stale-while-revalidate=300")

	c.JSON(http.StatusOK, gin.H{
		"products": res.Products,
		"hasMore":  res.HasMore,
		"page":     res.Page,
		"total":    res.Total,
		"source":   res.Source,
	})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isPermissionStatus(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unauthorized") || strings.Contains(msg, "permission denied")
}
