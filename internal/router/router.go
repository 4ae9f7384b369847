package router

import (
	"time"

	"giftpay/config"
	"giftpay/internal/handler"
	"giftpay/internal/middleware"
	"giftpay/internal/repository"
	"giftpay/internal/service"
	"giftpay/pkg/cloudinary"
	"giftpay/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, gateway payment.Provider, log *logrus.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// Services
	eventSvc := service.NewEventService(notificationRepo, log)
	authSvc := service.NewAuthService(cfg, userRepo, ledgerRepo)
	walletSvc := service.NewWalletService(ledgerRepo, userRepo, gateway, eventSvc, log,
		cfg.Paystack.CallbackURL, cfg.Paystack.VerifyTimeout)
	orderSvc := service.NewOrderService(ledgerRepo, inventoryRepo, orderRepo, brandRepo, userRepo,
		gateway, eventSvc, log, cfg.Paystack.CallbackURL, cfg.Paystack.VerifyTimeout)
	reviewSvc := service.NewReviewService(db, eventSvc, auditRepo, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)
	orderHandler := handler.NewOrderHandler(orderSvc, orderRepo)
	giftcardHandler := handler.NewGiftcardHandler(brandRepo, inventoryRepo)
	adminHandler := handler.NewAdminHandler(reviewSvc, walletSvc, orderRepo, inventoryRepo, brandRepo, auditRepo)
	webhookHandler := handler.NewPaystackWebhookHandler(&cfg.Paystack, orderSvc, walletSvc, auditRepo, log)
	uploadHandler := handler.NewUploadHandler(cloud)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		api.GET("/giftcards/brands", giftcardHandler.ListBrands)
		api.GET("/giftcards/availability", giftcardHandler.Availability)

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/wallet", walletHandler.GetBalance)
			me.GET("/wallet/transactions", walletHandler.GetTransactions)
			me.GET("/notifications", notificationHandler.List)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.GET("/orders", orderHandler.ListMine)
			me.GET("/orders/:ref", orderHandler.Get)
			me.GET("/orders/:ref/codes", orderHandler.Codes)
		}

		api.POST("/wallet/fund/manual", authMw, walletHandler.FundManual)
		api.POST("/wallet/fund/gateway", authMw, walletHandler.FundGateway)
		api.POST("/orders/sell", authMw, orderHandler.Sell)
		api.POST("/orders/buy", authMw, orderHandler.Buy)
		api.POST("/upload/proof", authMw, uploadHandler.UploadProof)

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/orders", adminHandler.ListOrders)
			admin.POST("/orders/:ref/approve", adminHandler.ApproveOrder)
			admin.POST("/orders/:ref/reject", adminHandler.RejectOrder)
			admin.POST("/funding/:reference/settle", adminHandler.SettleFunding)
			admin.POST("/brands", adminHandler.CreateBrand)
			admin.POST("/variants", adminHandler.CreateVariant)
			admin.POST("/inventory", adminHandler.StockInventory)
			admin.GET("/audit", adminHandler.ListAudit)
			admin.GET("/wallets/:user_id/check", adminHandler.CheckWallet)
		}

		api.POST("/webhooks/paystack", webhookHandler.Handle)
	}

	return r
}
