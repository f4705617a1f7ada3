package seller

import (
	"log"
	"net/http"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// GetSellerProfile agrège la fiche vendeur affichée sur la page produit :
// utilisateur, avis reçus et boutique optionnelle.
// GET /api/seller/:sellerId?shopId=...
func GetSellerProfile(c *gin.Context) {
	sellerID := c.Param("sellerId")
	if sellerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID vendeur requis"})
		return
	}
	shopID := c.Query("shopId")

	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	profile := models.SellerProfile{SellerID: sellerID}

	var verified bool
	err = usersSession.Query("SELECT name, is_verified FROM users WHERE user_id = ?", sellerID).
		Scan(&profile.Name, &verified)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendeur introuvable"})
		return
	}
	profile.IsVerified = verified

	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Moyenne des avis reçus par le vendeur
	iter := productsSession.Query("SELECT rating FROM reviews_by_seller WHERE seller_id = ?", sellerID).Iter()
	var rating, total int
	for iter.Scan(&rating) {
		total += rating
		profile.TotalReviews++
	}
	if err := iter.Close(); err != nil {
		log.Printf("⚠️ Erreur lecture avis vendeur %s: %v", sellerID, err)
	}
	if profile.TotalReviews > 0 {
		profile.AverageRating = float64(total) / float64(profile.TotalReviews)
	}

	// Nombre de produits en vente
	iter = productsSession.Query("SELECT product_id FROM products WHERE seller_id = ? ALLOW FILTERING", sellerID).Iter()
	var id string
	for iter.Scan(&id) {
		profile.TotalProducts++
	}
	iter.Close()

	// Boutique optionnelle
	if shopID != "" {
		err = productsSession.Query("SELECT shop_id, name, logo_url FROM shops WHERE shop_id = ?", shopID).
			Scan(&profile.ShopID, &profile.ShopName, &profile.ShopLogoURL)
		if err != nil {
			log.Printf("⚠️ Boutique %s introuvable pour vendeur %s: %v", shopID, sellerID, err)
		}
	}

	c.JSON(http.StatusOK, profile)
}
