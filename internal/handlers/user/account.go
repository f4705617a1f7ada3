package user

import (
	"log"
	"net/http"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// GetProfile renvoie le profil de l'utilisateur connecté
func GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var user models.User
	err = session.Query("SELECT user_id, name, email, role, shop_id, shop_name, is_verified FROM users WHERE user_id = ?", userID).
		Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.ShopID, &user.ShopName, &user.IsVerified)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile met à jour le nom et la boutique de l'utilisateur connecté
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Name     string `json:"name" binding:"required,min=2,max=100"`
		ShopName string `json:"shopName"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query("UPDATE users SET name = ?, shop_name = ? WHERE user_id = ?",
		input.Name, input.ShopName, userID).Exec()
	if err != nil {
		log.Printf("❌ Erreur mise à jour profil %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour"})
}

// ChangePassword change le mot de passe après vérification de l'ancien
func ChangePassword(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var currentHash string
	if err := session.Query("SELECT password FROM users WHERE user_id = ?", userID).Scan(&currentHash); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	ok, err := utils.VerifyPassword(input.CurrentPassword, currentHash)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe actuel incorrect"})
		return
	}

	newHash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur changement mot de passe"})
		return
	}

	if err := session.Query("UPDATE users SET password = ? WHERE user_id = ?", newHash, userID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur changement mot de passe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe modifié"})
}
