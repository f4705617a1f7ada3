package user

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

const CartTTL = 30 * 24 * time.Hour // 30 jours

func cartKey(userID string) string { return "cart:" + userID }

// GetCart récupère le panier (seulement Redis, ultra-rapide)
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx := context.Background()
	data, err := database.Redis.Get(ctx, cartKey(userID)).Result()
	if err != nil || data == "" {
		c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}, "total": 0, "count": 0})
		return
	}

	var cart []models.CartItem
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": cart, "total": cartTotal(cart), "count": len(cart)})
}

// AddToCart ajoute un produit au panier avec validation du stock par couleur
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
		Color     string `json:"color"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var (
		name            string
		price           float64
		quantity        int
		colorQuantities map[string]int
		imageURLs       []string
	)
	err = session.Query(`SELECT name, price, quantity, color_quantities, image_urls FROM products WHERE product_id = ?`, input.ProductID).
		Scan(&name, &price, &quantity, &colorQuantities, &imageURLs)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	// Stock par couleur si une variante est demandée
	available := quantity
	if input.Color != "" {
		if perColor, ok := colorQuantities[input.Color]; ok {
			available = perColor
		}
	}
	if available < input.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant"})
		return
	}

	imageURL := ""
	if len(imageURLs) > 0 {
		imageURL = imageURLs[0]
	}

	item := models.CartItem{
		ProductID: input.ProductID,
		Name:      name,
		Price:     price,
		Quantity:  input.Quantity,
		Color:     input.Color,
		ImageURL:  imageURL,
	}

	ctx := context.Background()
	key := cartKey(userID)

	var cart []models.CartItem
	if data, err := database.Redis.Get(ctx, key).Result(); err == nil && data != "" {
		json.Unmarshal([]byte(data), &cart)
	}

	found := false
	for i := range cart {
		if cart[i].ProductID == item.ProductID && cart[i].Color == item.Color {
			newQuantity := cart[i].Quantity + item.Quantity
			if newQuantity > available {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant pour cette quantité"})
				return
			}
			cart[i].Quantity = newQuantity
			found = true
			break
		}
	}
	if !found {
		cart = append(cart, item)
	}

	saveCart(ctx, key, userID, cart)

	c.JSON(http.StatusOK, gin.H{"items": cart, "total": cartTotal(cart), "count": len(cart)})
}

// RemoveFromCart retire un produit (toutes couleurs confondues si color absent)
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productId")
	color := c.Query("color")

	ctx := context.Background()
	key := cartKey(userID)

	var cart []models.CartItem
	if data, err := database.Redis.Get(ctx, key).Result(); err == nil && data != "" {
		json.Unmarshal([]byte(data), &cart)
	}

	filtered := cart[:0]
	for _, item := range cart {
		if item.ProductID == productID && (color == "" || item.Color == color) {
			continue
		}
		filtered = append(filtered, item)
	}

	saveCart(ctx, key, userID, filtered)

	c.JSON(http.StatusOK, gin.H{"items": filtered, "total": cartTotal(filtered), "count": len(filtered)})
}

// ClearCart vide le panier
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx := context.Background()
	pipe := database.Redis.Pipeline()
	pipe.Del(ctx, cartKey(userID))
	pipe.Publish(ctx, cartKey(userID), "cleared")
	pipe.Exec(ctx)

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}

// saveCart persiste le panier et notifie les clients WebSocket via Pub/Sub
func saveCart(ctx context.Context, key, userID string, cart []models.CartItem) {
	jsonData, _ := json.Marshal(cart)
	pipe := database.Redis.Pipeline()
	pipe.Set(ctx, key, jsonData, CartTTL)
	pipe.Publish(ctx, "cart:"+userID, "updated")
	pipe.Exec(ctx)
}

func cartTotal(cart []models.CartItem) float64 {
	total := 0.0
	for _, item := range cart {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
