// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stickerly/stickershop-backend/internal/config"
	"github.com/stickerly/stickershop-backend/internal/domain/cart"
	"github.com/stickerly/stickershop-backend/internal/domain/checkout"
	"github.com/stickerly/stickershop-backend/internal/domain/currency"
	"github.com/stickerly/stickershop-backend/internal/domain/order"
	"github.com/stickerly/stickershop-backend/internal/domain/payment"
	"github.com/stickerly/stickershop-backend/internal/domain/social"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"github.com/stickerly/stickershop-backend/internal/domain/upload"
	"github.com/stickerly/stickershop-backend/internal/domain/user"
	"github.com/stickerly/stickershop-backend/internal/interfaces/http/handlers"
	"github.com/stickerly/stickershop-backend/internal/interfaces/http/middleware"
	"github.com/stickerly/stickershop-backend/internal/pkg/email"
	"github.com/stickerly/stickershop-backend/internal/pkg/pdf"
)

// SetupRoutes wires the services and registers every API route under
// the given group.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	converter := currency.NewConverter(cfg.Currency.BaseCode)
	detector := currency.NewDetector(cfg, converter, redisClient, logger)

	stickerService := sticker.NewService(db, cfg, logger)
	cartService := cart.NewService(
		cart.NewStore(db),
		cart.NewSessionStore(redisClient, cfg, logger),
		stickerService,
		logger,
	)
	orderService := order.NewService(db, logger)
	userService := user.NewService(db, cfg, logger)
	socialService := social.NewService(db, stickerService, logger)
	uploadService := upload.NewService(db, cfg, logger)

	gateway := payment.NewRazorpayGateway(cfg, logger)
	mailer := email.NewEmailService(cfg, logger)
	checkoutService := checkout.NewService(cartService, orderService, gateway, converter, mailer, logger)
	pdfService := pdf.NewService(cfg, converter)

	authHandler := handlers.NewAuthHandler(userService, cartService, logger)
	cartHandler := handlers.NewCartHandler(cartService)
	stickerHandler := handlers.NewStickerHandler(stickerService)
	socialHandler := handlers.NewSocialHandler(socialService)
	currencyHandler := handlers.NewCurrencyHandler(converter, detector, userService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, gateway, detector, userService)
	orderHandler := handlers.NewOrderHandler(orderService, pdfService)
	uploadHandler := handlers.NewUploadHandler(uploadService)

	auth := rg.Group("/auth")
	auth.Use(middleware.Session())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/profile", authHandler.GetProfile)
		users.PUT("/profile", authHandler.UpdateProfile)
		users.PUT("/password", authHandler.ChangePassword)
	}

	// Cart routes work for both anonymous sessions and signed-in
	// users, so the session cookie and optional auth run on all of
	// them.
	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.Session())
	cartGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.GET("/count", cartHandler.GetCount)
		cartGroup.POST("/items", cartHandler.AddItem)
		cartGroup.PUT("/items/:id", cartHandler.UpdateItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveItem)
		cartGroup.POST("/merge", middleware.AuthMiddleware(cfg), cartHandler.MergeCart)
	}

	stickers := rg.Group("/stickers")
	stickers.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		stickers.GET("/categories", stickerHandler.ListCategories)
		stickers.GET("/templates", stickerHandler.ListTemplates)
		stickers.GET("/templates/:id", stickerHandler.GetTemplate)
		stickers.GET("/custom/:id", stickerHandler.GetCustom)
		stickers.GET("/:id/likes", socialHandler.GetLikes)

		protected := stickers.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/custom", stickerHandler.CreateCustom)
			protected.POST("/generate", stickerHandler.GenerateDesign)
			protected.POST("/:id/like", socialHandler.LikeSticker)
			protected.DELETE("/:id/like", socialHandler.UnlikeSticker)
			protected.POST("/:id/publish", socialHandler.PublishSticker)
			protected.DELETE("/:id/publish", socialHandler.UnpublishSticker)
		}
	}

	rg.GET("/profiles/:id", socialHandler.GetProfile)

	currencyGroup := rg.Group("/currency")
	currencyGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		currencyGroup.GET("/rates", currencyHandler.GetRates)
		currencyGroup.GET("/detect", currencyHandler.Detect)
		currencyGroup.POST("/select", middleware.AuthMiddleware(cfg), currencyHandler.Select)
	}

	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.Session())
	checkoutGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		checkoutGroup.GET("/total", checkoutHandler.GetTotal)
	}

	payments := rg.Group("/payments")
	payments.Use(middleware.Session())
	payments.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		payments.GET("/key", checkoutHandler.GetKey)

		protected := payments.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/create-order", checkoutHandler.CreateOrder)
			protected.POST("/verify", checkoutHandler.VerifyPayment)
			protected.POST("/cancel", checkoutHandler.CancelPayment)
		}
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/invoice", orderHandler.DownloadInvoice)
	}

	uploads := rg.Group("/uploads")
	uploads.Use(middleware.AuthMiddleware(cfg))
	{
		uploads.POST("/designs", uploadHandler.UploadDesign)
		uploads.DELETE("/designs/:id", uploadHandler.DeleteDesign)
	}
}
