package product

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"velora_back_end/internal/catalog"
	"velora_back_end/internal/database"
	"velora_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// Durée de validité des URLs signées renvoyées au front.
const signedURLTTL = 15 * time.Minute

// UploadProductImage reçoit une image de l'assistant de mise en vente,
// l'envoie dans MinIO et l'ajoute aux image_urls du produit.
// POST /api/products/:id/images
func UploadProductImage(c *gin.Context) {
	sellerID := c.GetString("user_id")
	productID := c.Param("id")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant"})
		return
	}
	file.Close() // services.UploadFile ré-ouvre depuis le header

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

	// Nom d'objet unique sous le préfixe du produit
	ext := filepath.Ext(header.Filename)
	header.Filename = fmt.Sprintf("products/%s/%d%s", productID, time.Now().UnixNano(), ext)

	imageURL, err := services.UploadFile(os.Getenv("MINIO_BUCKET"), header)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload MinIO: " + err.Error()})
		return
	}

	var existing []string
	if err := session.Query("SELECT image_urls FROM products WHERE product_id = ?", productID).Scan(&existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}
	existing = append(existing, imageURL)

	if err := session.Query("UPDATE products SET image_urls = ?, updated_at = ? WHERE product_id = ?",
		existing, time.Now(), productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	catalog.Default.InvalidateCategory(category)

	c.JSON(http.StatusOK, gin.H{
		"message":   "✅ Image uploadée avec succès",
		"image_url": imageURL,
	})
}

// GetProductImages liste les images d'un produit avec, pour chacune, une URL
// signée à durée limitée utilisable par le front même en bucket privé.
// GET /api/products/:id/images
func GetProductImages(c *gin.Context) {
	productID := c.Param("id")

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var imageURLs []string
	if err := session.Query("SELECT image_urls FROM products WHERE product_id = ?", productID).Scan(&imageURLs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	signed := make([]string, 0, len(imageURLs))
	for _, u := range imageURLs {
		s, err := services.GenerateSignedURL(c.Request.Context(), u, signedURLTTL)
		if err != nil {
			// On retombe sur l'URL publique si la signature échoue
			s = u
		}
		signed = append(signed, s)
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":  productID,
		"image_urls":  imageURLs,
		"signed_urls": signed,
	})
}
