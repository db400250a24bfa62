// Package main provides the main entry point for the FAQBNB property management API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faqbnb/faqbnb-api/app/handlers"
	"github.com/faqbnb/faqbnb-api/app/middleware"
	"github.com/faqbnb/faqbnb-api/app/router"
	"github.com/faqbnb/faqbnb-api/app/services"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/config"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting FAQBNB application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initializeLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeLogging routes the standard logger to a rotating file sink
// when file output is configured
func initializeLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	sink := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, sink))
	default:
		log.SetOutput(sink)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService initializes the notification service
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var emailProvider services.EmailProvider
	if cfg.Email.Username != "" {
		emailProvider = services.NewSMTPEmailProvider(
			cfg.Email.Host,
			cfg.Email.Port,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.FromEmail,
		)
	} else {
		emailProvider = services.NewMockEmailProvider()
	}

	return services.NewNotificationService(emailProvider)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Bootstrap the admin user on an empty database
	if err := ensureAdminUser(db, cfg); err != nil {
		return nil, err
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewUserSessionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	itemRepo := repository.NewItemRepository(db)
	visitRepo := repository.NewItemVisitRepository(db)
	reactionRepo := repository.NewItemReactionRepository(db)
	requestRepo := repository.NewAccessRequestRepository(db)
	mailingRepo := repository.NewMailingListRepository(db)

	// Initialize services
	notificationService := initializeNotificationService(cfg)

	// Captcha service for admin login
	captchaSvc, err := services.NewCaptchaServiceRotate(2*time.Minute, 15, 300)
	if err != nil {
		return nil, err
	}

	qrService := services.NewQRService(cfg.Site.BaseURL)
	pdfService := services.NewPDFService()

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Log that services are initialized
	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Rate limiting degrades to a no-op when Redis is down or disabled
	var rateLimiter businessflow.RateLimiter
	if rc != nil {
		rateLimiter = businessflow.NewRedisRateLimiter(rc)
	} else {
		rateLimiter = businessflow.NewNoopRateLimiter()
	}

	// Initialize flows
	registrationFlow := businessflow.NewRegistrationFlow(
		requestRepo,
		accountRepo,
		userRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		rateLimiter,
		db,
	)

	loginFlow := businessflow.NewLoginFlow(
		userRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		captchaSvc,
		db,
	)

	accessRequestFlow := businessflow.NewAccessRequestFlow(
		requestRepo,
		auditRepo,
		notificationService,
		rateLimiter,
		db,
	)

	propertyFlow := businessflow.NewPropertyFlow(
		propertyRepo,
		itemRepo,
		auditRepo,
		db,
	)

	itemFlow := businessflow.NewItemFlow(
		propertyRepo,
		itemRepo,
		auditRepo,
		qrService,
		db,
	)

	publicItemFlow := businessflow.NewPublicItemFlow(
		itemRepo,
		visitRepo,
		reactionRepo,
		db,
	)

	analyticsFlow := businessflow.NewAnalyticsFlow(
		accountRepo,
		userRepo,
		propertyRepo,
		itemRepo,
		visitRepo,
		reactionRepo,
		requestRepo,
		mailingRepo,
	)

	qrExportFlow := businessflow.NewQRExportFlow(
		propertyRepo,
		itemRepo,
		qrService,
		pdfService,
	)

	mailingListFlow := businessflow.NewMailingListFlow(
		mailingRepo,
		requestRepo,
		rateLimiter,
		db,
	)

	accountFlow := businessflow.NewAccountFlow(
		accountRepo,
		userRepo,
		propertyRepo,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(registrationFlow, loginFlow, accessRequestFlow, captchaSvc)
	adminAuthHandler := handlers.NewAdminAuthHandler(loginFlow)
	accessRequestHandler := handlers.NewAccessRequestHandler(accessRequestFlow)
	adminAccessRequestHandler := handlers.NewAdminAccessRequestHandler(accessRequestFlow)
	propertyHandler := handlers.NewPropertyHandler(propertyFlow, qrExportFlow)
	itemHandler := handlers.NewItemHandler(itemFlow, qrExportFlow)
	publicItemHandler := handlers.NewPublicItemHandler(publicItemFlow)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsFlow)
	mailingListHandler := handlers.NewMailingListHandler(mailingListFlow)
	accountHandler := handlers.NewAccountHandler(accountFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)

	// Initialize router
	appRouter := router.NewFiberRouter(router.Handlers{
		Auth:          authHandler,
		AdminAuth:     adminAuthHandler,
		AccessRequest: accessRequestHandler,
		AdminRequests: adminAccessRequestHandler,
		Property:      propertyHandler,
		Item:          itemHandler,
		PublicItem:    publicItemHandler,
		Analytics:     analyticsHandler,
		MailingList:   mailingListHandler,
		Account:       accountHandler,
	}, authMiddleware)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureAdminUser creates the configured admin user when it does not exist
// yet. The admin carries no account, it operates across all of them.
func ensureAdminUser(db *gorm.DB, cfg *config.ProductionConfig) error {
	if cfg.Admin.Email == "" {
		return nil
	}

	userRepo := repository.NewUserRepository(db)

	email := utils.NormalizeEmail(cfg.Admin.Email)
	existing, err := userRepo.ByEmail(context.Background(), email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), cfg.Security.BcryptCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		UUID:            uuid.New(),
		Email:           email,
		FullName:        cfg.Admin.FullName,
		PasswordHash:    string(hashedPassword),
		Role:            models.UserRoleAdmin,
		IsActive:        utils.ToPtr(true),
		IsEmailVerified: utils.ToPtr(true),
		CreatedAt:       utils.UTCNow(),
		UpdatedAt:       utils.UTCNow(),
	}

	if err := userRepo.Save(context.Background(), admin); err != nil {
		return err
	}

	log.Printf("Bootstrap admin user created: %s", email)
	return nil
}
