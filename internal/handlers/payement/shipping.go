package payement

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// GetShippingOptions retourne les options de livraison disponibles
func GetShippingOptions(c *gin.Context) {
	var cartTotal float64
	if total := c.Query("cart_total"); total != "" {
		if n, err := strconv.ParseFloat(total, 64); err == nil {
			cartTotal = n
		}
	}

	freeThreshold := 500.0
	isFree := cartTotal >= freeThreshold

	options := []models.ShippingOption{
		{
			ID:            "standard",
			Name:          "Livraison Standard",
			Description:   "Livraison en 5-7 jours ouvrés",
			Price:         29.99,
			EstimatedDays: 7,
		},
		{
			ID:            "express",
			Name:          "Livraison Express",
			Description:   "Livraison en 2-3 jours ouvrés",
			Price:         59.99,
			EstimatedDays: 3,
		},
		{
			ID:            "next_day",
			Name:          "Livraison 24h",
			Description:   "Livraison le lendemain avant 18h",
			Price:         99.99,
			EstimatedDays: 1,
		},
	}

	if isFree {
		options[0].Price = 0
		options[0].Name = "Livraison Standard Gratuite"
	}

	c.JSON(http.StatusOK, models.ShippingCalculation{
		Options:       options,
		FreeThreshold: freeThreshold,
		CartTotal:     cartTotal,
		IsFree:        isFree,
	})
}

// Transporteurs connus et leur page de suivi publique
var carrierTrackingURLs = map[string]string{
	"ups":   "https://www.ups.com/track?tracknum=%s",
	"dhl":   "https://www.dhl.com/fr-fr/home/tracking.html?tracking-id=%s",
	"ptt":   "https://gonderitakip.ptt.gov.tr/Track/Verify?q=%s",
	"yurtici": "https://www.yurticikargo.com/tr/online-servisler/gonderi-sorgula?code=%s",
}

// GetOrderTracking renvoie les infos de suivi d'une commande avec un QR code
// pointant vers la page du transporteur.
// GET /api/orders/:orderId/tracking
func GetOrderTracking(c *gin.Context) {
	userID := c.GetString("user_id")
	orderID := c.Param("orderId")

	orderUUID, err := uuid.Parse(orderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var orderUserID, status, trackingNumber, carrier string
	var createdAt time.Time
	err = session.Query(`
		SELECT user_id, status, tracking_number, carrier, created_at
		FROM orders WHERE order_id = ?
	`, gocql.UUID(orderUUID)).Scan(&orderUserID, &status, &trackingNumber, &carrier, &createdAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if orderUserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	if trackingNumber == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande pas encore expédiée"})
		return
	}

	trackingURL := trackingNumber
	if tmpl, ok := carrierTrackingURLs[carrier]; ok {
		trackingURL = fmt.Sprintf(tmpl, trackingNumber)
	}

	info := models.TrackingInfo{
		OrderID:        orderID,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
		TrackingURL:    trackingURL,
		Events:         trackingEvents(status, createdAt),
	}

	// QR code scannable depuis l'app mobile
	png, err := qrcode.Encode(trackingURL, qrcode.Medium, 256)
	if err == nil {
		info.QRCode = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}

	c.JSON(http.StatusOK, info)
}

func trackingEvents(status string, createdAt time.Time) []models.TrackingEvent {
	events := []models.TrackingEvent{
		{Status: "Commande confirmée", Timestamp: createdAt},
	}
	switch status {
	case "shipped":
		events = append(events, models.TrackingEvent{Status: "Colis expédié", Timestamp: createdAt.Add(24 * time.Hour)})
	case "delivered":
		events = append(events,
			models.TrackingEvent{Status: "Colis expédié", Timestamp: createdAt.Add(24 * time.Hour)},
			models.TrackingEvent{Status: "Colis livré", Timestamp: createdAt.Add(72 * time.Hour)},
		)
	}
	return events
}
