package product

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"velora_back_end/internal/catalog"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// Entrée de l'assistant de mise en vente côté vendeur.
type productInput struct {
	Name            string         `json:"name" binding:"required,min=2,max=200"`
	Description     string         `json:"description"`
	Brand           string         `json:"brand"`
	Condition       string         `json:"condition"`
	Category        string         `json:"category" binding:"required"`
	Subcategory     string         `json:"subcategory"`
	SubSubcategory  string         `json:"sub_subcategory"`
	Gender          string         `json:"gender"`
	Price           float64        `json:"price" binding:"required,gt=0"`
	Currency        string         `json:"currency"`
	OriginalPrice   float64        `json:"original_price"`
	Quantity        int            `json:"quantity" binding:"gte=0"`
	Colors          []string       `json:"colors"`
	ColorQuantities map[string]int `json:"color_quantities"`
	ImageURLs       []string       `json:"image_urls"`
}

// CreateProduct crée une fiche produit pour le vendeur connecté.
// POST /api/products
func CreateProduct(c *gin.Context) {
	sellerID := c.GetString("user_id")

	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := models.Product{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Description:     in.Description,
		Brand:           in.Brand,
		Condition:       in.Condition,
		Category:        catalog.DisplayForm(in.Category),
		Subcategory:     catalog.DisplayForm(in.Subcategory),
		SubSubcategory:  catalog.DisplayForm(in.SubSubcategory),
		Gender:          in.Gender,
		Price:           in.Price,
		Currency:        in.Currency,
		OriginalPrice:   in.OriginalPrice,
		Quantity:        in.Quantity,
		Colors:          in.Colors,
		ColorQuantities: in.ColorQuantities,
		ImageURLs:       in.ImageURLs,
		SellerID:        sellerID,
	}
	if p.Condition == "" {
		p.Condition = catalog.DefaultCondition
	}
	if p.Currency == "" {
		p.Currency = catalog.DefaultCurrency
	}
	if p.OriginalPrice > p.Price {
		p.DiscountPct = (p.OriginalPrice - p.Price) / p.OriginalPrice * 100
	}

	// URL MinIO par défaut si le vendeur n'a pas encore uploadé d'image
	if len(p.ImageURLs) == 0 {
		p.ImageURLs = []string{fmt.Sprintf("http://%s/%s/products/%s.jpg",
			os.Getenv("MINIO_ENDPOINT"),
			os.Getenv("MINIO_BUCKET"),
			p.ID,
		)}
	}

	now := time.Now()
	p.CreatedAt = &now
	p.UpdatedAt = &now

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := `INSERT INTO products (product_id, name, description, brand, condition, category, subcategory, sub_subcategory, gender,
	          price, currency, original_price, discount_pct, quantity, colors, color_quantities, image_urls, is_boosted, ranking_score,
	          seller_id, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if err := session.Query(query, p.ID, p.Name, p.Description, p.Brand, p.Condition, p.Category, p.Subcategory, p.SubSubcategory,
		p.Gender, p.Price, p.Currency, p.OriginalPrice, p.DiscountPct, p.Quantity, p.Colors, p.ColorQuantities, p.ImageURLs,
		false, float64(0), p.SellerID, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit: " + err.Error()})
		return
	}

	// Index par catégorie pour la navigation
	if err := session.Query(`INSERT INTO products_by_category (category, product_id, name, price, quantity) VALUES (?, ?, ?, ?, ?)`,
		p.Category, p.ID, p.Name, p.Price, p.Quantity).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation products_by_category: %v", err)
	}

	// Indexation Elasticsearch + purge du cache navigation
	go services.IndexProduct(p)
	catalog.Default.InvalidateCategory(p.Category)

	c.JSON(http.StatusCreated, p)
}

// UpdateProduct met à jour une fiche appartenant au vendeur connecté.
// PUT /api/products/:id
func UpdateProduct(c *gin.Context) {
	sellerID := c.GetString("user_id")
	productID := c.Param("id")

	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	owner, category, err := productOwner(session, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if owner != sellerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ce produit ne vous appartient pas"})
		return
	}

	newCategory := catalog.DisplayForm(in.Category)
	now := time.Now()

	err = session.Query(`UPDATE products SET name = ?, description = ?, brand = ?, category = ?, subcategory = ?, sub_subcategory = ?,
		price = ?, quantity = ?, colors = ?, color_quantities = ?, image_urls = ?, updated_at = ? WHERE product_id = ?`,
		in.Name, in.Description, in.Brand, newCategory, catalog.DisplayForm(in.Subcategory), catalog.DisplayForm(in.SubSubcategory),
		in.Price, in.Quantity, in.Colors, in.ColorQuantities, in.ImageURLs, now, productID).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	catalog.Default.InvalidateCategory(category)
	if newCategory != category {
		catalog.Default.InvalidateCategory(newCategory)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour", "id": productID})
}

// DeleteProduct supprime une fiche appartenant au vendeur connecté.
// DELETE /api/products/:id
func DeleteProduct(c *gin.Context) {
	sellerID := c.GetString("user_id")
	productID := c.Param("id")

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	owner, category, err := productOwner(session, productID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if owner != sellerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ce produit ne vous appartient pas"})
		return
	}

	if err := session.Query("DELETE FROM products WHERE product_id = ?", productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}
	session.Query("DELETE FROM products_by_category WHERE category = ? AND product_id = ?", category, productID).Exec()

	go services.DeleteProductIndex(productID)
	catalog.Default.InvalidateCategory(category)

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé", "id": productID})
}

func productOwner(session *gocql.Session, productID string) (string, string, error) {
	var owner, category string
	err := session.Query("SELECT seller_id, category FROM products WHERE product_id = ?", productID).Scan(&owner, &category)
	return owner, category, err
}
