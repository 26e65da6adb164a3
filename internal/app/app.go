package app

import (
	"database/sql"
	"fmt"
	"log"

	"ispcrm/internal/config"
	"ispcrm/internal/handlers"
	"ispcrm/internal/logger"
	"ispcrm/internal/middleware"
	"ispcrm/internal/pdf"
	"ispcrm/internal/repositories"
	"ispcrm/internal/routes"
	"ispcrm/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "ispcrm/docs"
)

func Run() {
	cfg := config.LoadConfig()
	logg := logger.New(cfg.Env)

	middleware.SetJWTKey(cfg.Auth.JWTSecret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logg.Error("failed to close database", "err", err)
		}
	}()

	if err := Migrate(db); err != nil {
		log.Fatal("failed to run migrations: ", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	productRepo := repositories.NewProductRepository(db)
	dealRepo := repositories.NewDealRepository(db)
	approvalRepo := repositories.NewApprovalRepository(db)
	serviceRepo := repositories.NewServiceRepository(db)
	store := repositories.NewStore(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.ManagerEmail,
	)

	var notifiers []services.ApprovalNotifier
	if cfg.Email.SMTPHost != "" && cfg.Email.ManagerEmail != "" {
		notifiers = append(notifiers, services.NewEmailApprovalNotifier(emailService, logg))
	}
	if cfg.Telegram.Enabled {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logg)
		if err != nil {
			logg.Error("telegram notifier disabled", "err", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	userService := services.NewUserService(userRepo, emailService, authService, logg)
	leadService := services.NewLeadService(leadRepo, store, logg)
	customerService := services.NewCustomerService(customerRepo, serviceRepo)
	productService := services.NewProductService(productRepo)
	dealService := services.NewDealService(store, logg, notifiers...)
	reportService := services.NewReportService(leadRepo, dealRepo, approvalRepo, pdf.NewReportGenerator())

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	leadHandler := handlers.NewLeadHandler(leadService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	productHandler := handlers.NewProductHandler(productService)
	dealHandler := handlers.NewDealHandler(dealService)
	reportsHandler := handlers.NewReportsHandler(reportService, userService)

	// === Gin ===
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		leadHandler,
		customerHandler,
		productHandler,
		dealHandler,
		reportsHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logg.Info("server listening", "addr", listenAddr, "env", cfg.Env)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server stopped: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
