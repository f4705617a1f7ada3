package product

import (
	"log"
	"net/http"
	"strings"
	"time"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// CreateReview crée un avis sur un produit
func CreateReview(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("id")

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"required,min=10,max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Vérifier que le produit existe et récupérer son vendeur
	var sellerID string
	if err := productsSession.Query("SELECT seller_id FROM products WHERE product_id = ?", productID).Scan(&sellerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// Vérifier que l'utilisateur a acheté ce produit
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := ordersSession.Query("SELECT items FROM orders_by_user WHERE user_id = ?", userID).Iter()
	var hasPurchased bool
	var itemsJSON string
	for iter.Scan(&itemsJSON) {
		if strings.Contains(itemsJSON, productID) {
			hasPurchased = true
			break
		}
	}
	iter.Close()

	if !hasPurchased {
		c.JSON(http.StatusForbidden, gin.H{"error": "Vous devez avoir acheté ce produit pour laisser un avis"})
		return
	}

	// Récupérer le nom de l'utilisateur
	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var userName string
	if err := usersSession.Query("SELECT name FROM users WHERE user_id = ?", userID).Scan(&userName); err != nil || userName == "" {
		userName = "Utilisateur"
	}

	review := models.Review{
		ID:        gocql.TimeUUID().String(),
		ProductID: productID,
		SellerID:  sellerID,
		UserID:    userID,
		UserName:  userName,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	err = productsSession.Query(`
		INSERT INTO reviews_by_product (product_id, review_id, seller_id, user_id, user_name, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, review.ProductID, review.ID, review.SellerID, review.UserID, review.UserName, review.Rating, review.Comment, review.CreatedAt).Exec()
	if err != nil {
		log.Printf("❌ Erreur création avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création avis"})
		return
	}

	// Index par vendeur pour la page boutique
	err = productsSession.Query(`
		INSERT INTO reviews_by_seller (seller_id, review_id, product_id, user_id, user_name, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, review.SellerID, review.ID, review.ProductID, review.UserID, review.UserName, review.Rating, review.Comment, review.CreatedAt).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur index reviews_by_seller: %v", err)
	}

	log.Printf("⭐ Avis créé: %s pour produit %s (note: %d/5)", review.ID, productID, req.Rating)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Avis créé avec succès",
		"review":  review,
	})
}

// GetProductReviews récupère les avis d'un produit avec la note moyenne
func GetProductReviews(c *gin.Context) {
	productID := c.Param("id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit requis"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`
		SELECT review_id, seller_id, user_id, user_name, rating, comment, created_at
		FROM reviews_by_product WHERE product_id = ?
	`, productID).Iter()

	var reviews []models.Review
	var review models.Review
	var totalRating int

	for iter.Scan(&review.ID, &review.SellerID, &review.UserID, &review.UserName, &review.Rating, &review.Comment, &review.CreatedAt) {
		review.ProductID = productID
		reviews = append(reviews, review)
		totalRating += review.Rating
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}

	var averageRating float64
	if len(reviews) > 0 {
		averageRating = float64(totalRating) / float64(len(reviews))
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"total_reviews":  len(reviews),
		"average_rating": averageRating,
	})
}
