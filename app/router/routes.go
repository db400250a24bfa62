// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/handlers"
	"github.com/faqbnb/faqbnb-api/app/middleware"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers bundles every HTTP handler the router wires up
type Handlers struct {
	Auth          handlers.AuthHandlerInterface
	AdminAuth     handlers.AdminAuthHandlerInterface
	AccessRequest handlers.AccessRequestHandlerInterface
	AdminRequests handlers.AdminAccessRequestHandlerInterface
	Property      handlers.PropertyHandlerInterface
	Item          handlers.ItemHandlerInterface
	PublicItem    handlers.PublicItemHandlerInterface
	Analytics     handlers.AnalyticsHandlerInterface
	MailingList   handlers.MailingListHandlerInterface
	Account       handlers.AccountHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	handlers Handlers
	auth     *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(h Handlers, auth *middleware.AuthMiddleware) Router {
	app := fiber.New(fiber.Config{
		AppName:      "FAQBNB API",
		ServerHeader: "FAQBNB",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:      app,
		handlers: h,
		auth:     auth,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the rate-limited API tree
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// API documentation route (development only)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/docs", r.getAPIDocumentation)
		log.Println("API documentation enabled for development")
	}

	// Apply general rate limiting to all API routes (aligned with nginx)
	api.Use(limiter.New(limiter.Config{
		Max:        2000,            // Maximum 2000 requests (matches nginx api zone)
		Expiration: 1 * time.Minute, // Per minute
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")

	// Apply stricter rate limiting to auth endpoints (aligned with nginx)
	auth.Use(limiter.New(limiter.Config{
		Max:        20,              // Maximum 20 requests (matches nginx auth zone)
		Expiration: 1 * time.Minute, // Per minute
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: rateLimitReached,
	}))

	// Auth endpoints
	auth.Post("/register", r.handlers.Auth.Register)
	auth.Post("/login", r.handlers.Auth.Login)
	auth.Post("/logout", r.handlers.Auth.Logout)
	auth.Post("/refresh", r.handlers.Auth.RefreshToken)
	auth.Post("/validate-access-code", r.handlers.Auth.ValidateAccessCode)
	auth.Get("/admin/captcha", r.handlers.Auth.Captcha)

	// Public access request intake
	api.Post("/access-requests", r.handlers.AccessRequest.Submit)
	api.Post("/waitlist", r.handlers.AccessRequest.JoinWaitlist)

	// Anonymous item pages (QR scans land here)
	api.Get("/items/:publicID", r.handlers.PublicItem.View)
	api.Post("/items/:publicID/reactions", r.handlers.PublicItem.React)
	api.Delete("/items/:publicID/reactions", r.handlers.PublicItem.RemoveReaction)

	// Mailing list forms
	api.Post("/mailing-list/subscribe", r.handlers.MailingList.Subscribe)
	api.Post("/mailing-list/unsubscribe", r.handlers.MailingList.Unsubscribe)

	// Authenticated account routes
	user := api.Group("/user", r.auth.Authenticate())

	user.Get("/profile", r.handlers.Account.Profile)

	user.Post("/properties", r.handlers.Property.Create)
	user.Get("/properties", r.handlers.Property.List)
	user.Get("/properties/:uuid", r.handlers.Property.Get)
	user.Put("/properties/:uuid", r.handlers.Property.Update)
	user.Delete("/properties/:uuid", r.handlers.Property.Delete)
	user.Post("/properties/:uuid/qr-sheet", r.handlers.Property.QRSheet)

	user.Post("/properties/:uuid/items", r.handlers.Item.Create)
	user.Get("/properties/:uuid/items", r.handlers.Item.ListByProperty)
	user.Get("/items/:publicID", r.handlers.Item.Get)
	user.Put("/items/:publicID", r.handlers.Item.Update)
	user.Delete("/items/:publicID", r.handlers.Item.Delete)
	user.Get("/items/:publicID/qr", r.handlers.Item.QRCode)

	user.Get("/analytics/dashboard", r.handlers.Analytics.Dashboard)
	user.Get("/analytics/items/:publicID", r.handlers.Analytics.ItemAnalytics)
	user.Get("/analytics/export", r.handlers.Analytics.ExportReport)

	// Admin login shares the auth rate limit zone but not the admin guard
	auth.Post("/admin/login", r.handlers.AdminAuth.Login)

	// Admin routes
	admin := api.Group("/admin", r.auth.AdminAuthenticate())

	// Static segments registered before the :id routes
	admin.Get("/access-requests/stats", r.handlers.AdminRequests.Stats)
	admin.Get("/access-requests", r.handlers.AdminRequests.List)
	admin.Post("/access-requests", r.handlers.AdminRequests.Create)
	admin.Post("/access-requests/:id/approve", r.handlers.AdminRequests.Approve)
	admin.Post("/access-requests/:id/deny", r.handlers.AdminRequests.Deny)
	admin.Put("/access-requests/:id/notes", r.handlers.AdminRequests.UpdateNotes)

	admin.Get("/accounts", r.handlers.Account.ListAccounts)
	admin.Get("/accounts/:id/export", r.handlers.Analytics.AdminExportReport)
	admin.Get("/stats", r.handlers.Analytics.SystemStats)
	admin.Get("/mailing-list", r.handlers.MailingList.List)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' https:; connect-src 'self' https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://faqbnb.com",
			"https://www.faqbnb.com",
			"https://api.faqbnb.com",
			"https://admin.faqbnb.com",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Skip compression for binary exports
			contentType := c.Get("Content-Type")
			return contains(contentType, "image/") ||
				contains(contentType, "application/pdf")
		},
	}))

	// Advanced logging middleware
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	// Request counters and latency histograms
	r.app.Use(middleware.Metrics())

	// Custom security middleware
	r.app.Use(r.securityMiddleware)

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Custom security middleware
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	// Add security headers
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "FAQBNB")

	// Continue to next middleware
	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "faqbnb-api",
		},
	})
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	docs := GetRouteDocumentation()
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "FAQBNB API Documentation",
			"version":     "1.0.0",
			"description": "Property and item management API with QR-code guest pages",
			"endpoints":   docs,
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Shared limiter response
func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// Helper functions

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "POST",
			"path":        "/api/v1/auth/register",
			"description": "Redeem an approved access code and create an account",
			"parameters": map[string]any{
				"access_code":      "string (required) - 12-character code from the approval email",
				"email":            "string (required) - Email the access request was submitted with",
				"password":         "string (required) - Password (min 8 chars, uppercase + number)",
				"confirm_password": "string (required) - Must match password",
				"full_name":        "string (required) - Account holder name",
				"account_name":     "string (optional) - Display name for the account",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/auth/login",
			"description": "Authenticate with email and password",
			"parameters": map[string]any{
				"email":    "string (required) - Email address",
				"password": "string (required) - User password",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/auth/validate-access-code",
			"description": "Check whether an access code is still redeemable",
			"parameters": map[string]any{
				"access_code": "string (required) - 12-character code",
				"email":       "string (required) - Email the code was issued to",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/access-requests",
			"description": "Submit a public access request",
			"parameters": map[string]any{
				"email":     "string (required) - Contact email",
				"full_name": "string (required) - Requester name",
				"message":   "string (optional) - Why access is wanted",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/items/:publicID",
			"description": "Anonymous item page lookup, records a visit",
			"parameters": map[string]any{
				"publicID":   "string (required) - Item public UUID from the QR code",
				"session_id": "string (optional) - Query parameter, anonymous session token",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}
