package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-batch-inventory/internal/handler"
	"go-batch-inventory/internal/middleware"
	"go-batch-inventory/internal/model"
	"go-batch-inventory/internal/repository"
	"go-batch-inventory/internal/service"
	"go-batch-inventory/internal/ws"
	"go-batch-inventory/pkg/database"
	"go-batch-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	log := logger.New(os.Getenv("APP_ENV"))
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found")
	}

	db := database.ConnectDB()
	// Auto migrate; use a dedicated migration tool once the schema settles.
	if err := db.AutoMigrate(
		&model.User{},
		&model.Unit{},
		&model.Product{},
		&model.Batch{},
		&model.Transaction{},
	); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	seedAdminUser(db, log)

	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// Dependency wiring
	productRepo := repository.NewProductRepo(db)
	unitRepo := repository.NewUnitRepo(db)
	batchRepo := repository.NewBatchRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	userRepo := repository.NewUserRepo(db)

	invService := service.NewInventoryService(productRepo, unitRepo, batchRepo, txRepo, db, wsHub, log)
	catService := service.NewCatalogService(productRepo, batchRepo, txRepo, unitRepo)
	dashService := service.NewDashboardService(productRepo, batchRepo)
	authService := service.NewAuthService(userRepo)

	productHandler := handler.NewProductHandler(invService, catService, log)
	batchHandler := handler.NewBatchHandler(invService, catService, log)
	txHandler := handler.NewTransactionHandler(catService, log)
	unitHandler := handler.NewUnitHandler(catService, log)
	dashHandler := handler.NewDashboardHandler(dashService, log)
	authHandler := handler.NewAuthHandler(authService, log)

	app := fiber.New(fiber.Config{
		AppName: "Batch Inventory v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")

	// Public routes
	api.Get("/health", handler.Health)
	api.Post("/auth/login", authHandler.Login)

	// Protected routes: the auth middleware resolves the actor every ledger
	// write is attributed to.
	protected := api.Group("", middleware.RequireAuth(userRepo))

	protected.Get("/products", productHandler.GetProducts)
	protected.Post("/products", productHandler.CreateProduct)
	protected.Post("/products/sell", productHandler.Sell)

	protected.Get("/batches", batchHandler.GetBatches)
	protected.Post("/batches", batchHandler.CreateBatch)

	protected.Get("/transactions", txHandler.GetTransactions)
	protected.Get("/units", unitHandler.GetUnits)
	protected.Get("/dashboard", dashHandler.GetStats)

	// WebSocket route for live stock updates
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// seedAdminUser creates the bootstrap account when the user table is empty,
// so there is an actor to log in as on a fresh database.
func seedAdminUser(db *gorm.DB, log *zap.Logger) {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &model.User{Name: "Admin", Email: "admin@local.test"}
	if err := admin.SetPassword(password); err != nil {
		log.Warn("failed to hash admin password", zap.Error(err))
		return
	}
	if err := db.Create(admin).Error; err != nil {
		log.Warn("failed to create admin user", zap.Error(err))
		return
	}
	log.Info("admin user created", zap.String("email", admin.Email))
}
