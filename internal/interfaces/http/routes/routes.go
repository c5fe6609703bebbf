// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/handlers"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/middleware"
	"github.com/your-org/marketplace-backend/internal/pkg/email"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	emailService := email.NewEmailService(cfg)

	authHandler := handlers.NewAuthHandler(db, cfg, log)
	addressHandler := handlers.NewAddressHandler(db, cfg)
	storeHandler := handlers.NewStoreHandler(db, cfg, log, emailService)
	productHandler := handlers.NewProductHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db, cfg, log, emailService)
	adminHandler := handlers.NewAdminHandler(db, cfg, redisClient)

	setupAuthRoutes(rg, cfg, authHandler)
	setupUserRoutes(rg, cfg, addressHandler)
	setupStoreRoutes(rg, cfg, storeHandler, productHandler, orderHandler)
	setupProductRoutes(rg, cfg, productHandler)
	setupCartRoutes(rg, cfg, cartHandler)
	setupOrderRoutes(rg, cfg, orderHandler)
	setupAdminRoutes(rg, cfg, adminHandler)
}

func setupAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.AuthHandler) {
	auth := rg.Group("/auth")
	{
		// Register and login run with the session cookie so the
		// anonymous cart follows the user in
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", h.Logout)
			protected.GET("/profile", h.GetProfile)
			protected.PUT("/profile", h.UpdateProfile)
			protected.PUT("/password", h.ChangePassword)
		}
	}
}

func setupUserRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.AddressHandler) {
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/addresses", h.ListAddresses)
		users.POST("/addresses", h.CreateAddress)
		users.GET("/addresses/:id", h.GetAddress)
		users.PUT("/addresses/:id", h.UpdateAddress)
		users.DELETE("/addresses/:id", h.DeleteAddress)
	}
}

func setupStoreRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.StoreHandler, ph *handlers.ProductHandler, oh *handlers.OrderHandler) {
	stores := rg.Group("/stores")
	stores.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		stores.GET("", h.ListStores)
		stores.GET("/slug/:slug", h.GetStore)
		stores.GET("/:id/products", ph.ListByStore)
	}

	owned := rg.Group("/stores")
	owned.Use(middleware.AuthMiddleware(cfg))
	{
		owned.POST("", h.CreateStore)
		owned.PUT("/:id", h.UpdateStore)
		owned.PUT("/:id/open", h.SetOpen)

		owned.POST("/:id/products", ph.CreateProduct)
		owned.GET("/:id/orders", oh.ListStoreOrders)

		owned.GET("/:id/pix-keys", h.ListPixKeys)
		owned.POST("/:id/pix-keys", h.AddPixKey)
		owned.DELETE("/:id/pix-keys/:keyId", h.DeletePixKey)
	}
}

func setupProductRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("/:id", h.GetProduct)
	}

	owned := rg.Group("/products")
	owned.Use(middleware.AuthMiddleware(cfg))
	{
		owned.PUT("/:id", h.UpdateProduct)
		owned.PUT("/:id/stock", h.SetStock)
		owned.DELETE("/:id", h.DeleteProduct)
	}
}

func setupCartRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.CartHandler) {
	// Carts work for guests and authenticated users alike
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:id", h.UpdateItem)
		cart.DELETE("/items/:id", h.RemoveItem)
		cart.DELETE("", h.ClearCart)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.OrderHandler) {
	orders := rg.Group("/orders")
	orders.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		orders.POST("", h.CommitOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/receipt", h.GetReceipt)
	}

	// Status updates come from the store owner
	managed := rg.Group("/orders")
	managed.Use(middleware.AuthMiddleware(cfg))
	{
		managed.PATCH("/:id/status", h.UpdateStatus)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.AdminHandler) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", h.GetDashboard)
		admin.GET("/reports/sales", h.GetSalesReport)

		admin.GET("/sales-logs", h.ListSalesLogs)
		admin.DELETE("/sales-logs/:id", h.DeleteSalesLog)

		admin.GET("/settings", h.GetSettings)
		admin.PUT("/settings", h.UpdateSettings)

		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/status", h.UpdateUserStatus)
	}
}
