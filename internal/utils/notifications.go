package utils

import (
	"fmt"
	"log"

	"velora_back_end/internal/models"
)

// SendRefundStatusEmail notifie l'acheteur d'un changement de statut de remboursement
func SendRefundStatusEmail(refund models.Refund, userEmail string) error {
	subject := refundEmailSubject(refund.Status)
	html := refundEmailHTML(refund)

	if err := SendEmail(userEmail, subject, html); err != nil {
		log.Printf("❌ Erreur envoi email remboursement: %v", err)
		return err
	}

	log.Printf("📧 Email de remboursement envoyé: %s → %s", refund.Status, userEmail)
	return nil
}

func refundEmailSubject(status string) string {
	switch status {
	case "approved":
		return "✅ Remboursement approuvé - Velora"
	case "completed":
		return "💰 Remboursement effectué - Velora"
	case "rejected":
		return "❌ Demande de remboursement refusée - Velora"
	default:
		return "📋 Mise à jour de votre demande de remboursement - Velora"
	}
}

func refundEmailHTML(refund models.Refund) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Remboursement</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre remboursement</h2>
		<p>Bonjour,</p>
		<p>Le statut de votre demande de remboursement pour la commande <strong>%s</strong> est désormais : <strong>%s</strong>.</p>
		<p>Montant : <strong>%.2f TL</strong></p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Velora</strong>
		</p>
	</div>
</body>
</html>`, refund.OrderID, refund.Status, refund.RefundAmount)
}
