package routes

import (
	"velora_back_end/internal/handlers/payement"
	"velora_back_end/internal/handlers/product"
	"velora_back_end/internal/handlers/seller"
	"velora_back_end/internal/handlers/user"
	"velora_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Auth
	api.POST("/auth/register", user.Register)
	api.POST("/auth/login", middleware.LoginRateLimit(), user.Login)

	// Catalogue public
	api.GET("/products/:id/related", product.GetRelatedProducts)
	api.GET("/products/category", product.GetCategoryProducts)
	api.GET("/products/:id/reviews", product.GetProductReviews)
	api.GET("/products/:id/images", product.GetProductImages)
	api.GET("/seller/:sellerId", seller.GetSellerProfile)
	api.POST("/search", middleware.SearchRateLimit(), product.SearchProxy)

	// Livraison
	api.GET("/shipping/options", payement.GetShippingOptions)

	// Routes authentifiées
	auth := api.Group("")
	auth.Use(middleware.AuthRequired())
	{
		// Compte
		auth.GET("/me", user.GetProfile)
		auth.PUT("/me", user.UpdateProfile)
		auth.PUT("/me/password", user.ChangePassword)

		// Fiches produit côté vendeur
		auth.POST("/products", product.CreateProduct)
		auth.PUT("/products/:id", product.UpdateProduct)
		auth.DELETE("/products/:id", product.DeleteProduct)
		auth.POST("/products/:id/images", product.UploadProductImage)

		// Avis
		auth.POST("/products/:id/reviews", product.CreateReview)

		// Panier
		auth.GET("/cart", user.GetCart)
		auth.POST("/cart", user.AddToCart)
		auth.DELETE("/cart/:productId", user.RemoveFromCart)
		auth.DELETE("/cart", user.ClearCart)
		auth.GET("/cart/ws", user.CartWebSocket)

		// Commandes
		auth.GET("/orders/:orderId/tracking", payement.GetOrderTracking)
		auth.POST("/orders/:orderId/refund", payement.RequestRefund)
		auth.GET("/refunds", payement.GetUserRefunds)
	}

	// Routes admin
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin())
	{
		admin.GET("/refunds", payement.GetAllRefunds)
		admin.POST("/refunds/:refundId/process", payement.ProcessRefund)
	}
}
