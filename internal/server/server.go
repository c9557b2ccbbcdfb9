package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "taskhive/docs" // swagger docs
	"taskhive/internal/cache"
	"taskhive/internal/config"
	"taskhive/internal/database"
	"taskhive/internal/middleware"
	"taskhive/internal/models"
	"taskhive/internal/notifications"
	"taskhive/internal/repository"
	"taskhive/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo     repository.UserRepository
	catalogRepo  repository.CatalogRepository
	orderRepo    repository.OrderRepository
	proposalRepo repository.ProposalRepository
	paymentRepo  repository.PaymentRepository
	reviewRepo   repository.ReviewRepository
	chatRepo     repository.ChatRepository
	subRepo      repository.SubscriptionRepository
	adminRepo    repository.AdminRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub

	orderService        *service.OrderService
	proposalService     *service.ProposalService
	paymentService      *service.PaymentService
	reviewService       *service.ReviewService
	chatService         *service.ChatService
	subscriptionService *service.SubscriptionService
	adminService        *service.AdminService
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("taskhive-api"),
		userRepo:       repository.NewUserRepository(db),
		catalogRepo:    repository.NewCatalogRepository(db),
		orderRepo:      repository.NewOrderRepository(db),
		proposalRepo:   repository.NewProposalRepository(db),
		paymentRepo:    repository.NewPaymentRepository(db),
		reviewRepo:     repository.NewReviewRepository(db),
		chatRepo:       repository.NewChatRepository(db),
		subRepo:        repository.NewSubscriptionRepository(db),
		adminRepo:      repository.NewAdminRepository(db),
	}

	s.hub = notifications.NewHub()
	s.notifier = notifications.NewNotifier(redisClient)
	chatNotifier := notifications.NewChatNotifier(s.hub, s.notifier, s.userRepo)

	s.orderService = service.NewOrderService(s.orderRepo, s.catalogRepo, db)
	s.proposalService = service.NewProposalService(s.proposalRepo, s.orderRepo, s.subRepo)
	s.paymentService = service.NewPaymentService(s.paymentRepo, s.orderRepo)
	s.reviewService = service.NewReviewService(s.reviewRepo, s.orderRepo, s.userRepo)
	s.chatService = service.NewChatService(s.chatRepo, s.userRepo, chatNotifier)
	s.subscriptionService = service.NewSubscriptionService(s.subRepo, s.userRepo)
	s.adminService = service.NewAdminService(s.adminRepo, s.proposalService, s.subscriptionService)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Distributed tracing
	app.Use(middleware.TracingMiddleware())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "TaskHive Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)

	// Public catalog browse
	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Post("/", middleware.AuthRequired, middleware.AdminRequired, s.CreateCategory)
	categories.Get("/:id", s.GetCategory)
	categories.Delete("/:id", middleware.AuthRequired, middleware.AdminRequired, s.DeleteCategory)

	services := api.Group("/services")
	services.Get("/", s.GetServices)
	services.Post("/", middleware.AuthRequired, middleware.AdminRequired, s.CreateService)
	services.Get("/:id", s.GetService)
	services.Put("/:id", middleware.AuthRequired, middleware.AdminRequired, s.UpdateService)
	services.Delete("/:id", middleware.AuthRequired, middleware.AdminRequired, s.DeleteService)

	// Public subscription plan storefront
	api.Get("/subscriptions/plans", s.GetPlans)

	// Payment provider webhook (authenticated by provider reference, not JWT)
	api.Post("/payments/webhook", middleware.RateLimit(
		s.redis, 60, time.Minute, "payment_webhook"), s.PaymentWebhook)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Delete("/me", s.DeleteMyAccount)
	users.Post("/me/devices", s.RegisterDevice)
	users.Get("/me/devices", s.GetMyDevices)
	users.Delete("/me/devices/:deviceId", s.RemoveDevice)
	users.Get("/:id", s.GetUserProfile)

	// Order routes
	orders := protected.Group("/orders")
	orders.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_order"), s.CreateOrder)
	orders.Get("/open", s.GetOpenOrders)
	orders.Get("/mine", s.GetMyOrders)
	// Specific /:id/:resource routes BEFORE generic /:id route
	orders.Post("/:id/accept", s.AcceptProposal)
	orders.Post("/:id/start", s.StartOrder)
	orders.Post("/:id/complete", s.CompleteOrder)
	orders.Post("/:id/cancel", s.CancelOrder)
	orders.Post("/:id/proposals", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "submit_proposal"), s.SubmitProposal)
	orders.Get("/:id/proposals", s.GetOrderProposals)
	orders.Post("/:id/payments", s.RecordPayment)
	orders.Get("/:id/payments", s.GetOrderPayments)
	orders.Post("/:id/reviews", middleware.RateLimit(
		s.redis, 5, time.Minute, "submit_review"), s.SubmitReview)
	orders.Get("/:id/reviews", s.GetOrderReviews)
	orders.Get("/:id", s.GetOrder)
	orders.Delete("/:id", s.DeleteOrder)

	// Proposal routes
	proposals := protected.Group("/proposals")
	proposals.Get("/mine", s.GetMyProposals)
	proposals.Post("/:id/decline", s.DeclineProposal)
	proposals.Delete("/:id", s.WithdrawProposal)

	// Review routes
	reviews := protected.Group("/reviews")
	reviews.Delete("/:id", s.DeleteReview)

	// Payment refunds are an admin operation
	protected.Post("/payments/:id/refund", middleware.AdminRequired, s.RefundPayment)

	// Chat routes
	chat := protected.Group("/chat")
	chat.Get("/rooms", s.GetChatRooms)
	chat.Get("/rooms/:id/messages", s.GetChatMessages)
	chat.Post("/rooms/:id/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_chat"), s.SendChatMessage)
	chat.Post("/rooms/:id/read", s.MarkChatRead)
	chat.Delete("/rooms/:id/messages/:messageId", s.DeleteChatMessage)
	chat.Get("/rooms/:id", s.GetChatRoom)

	// Subscription routes
	subs := protected.Group("/subscriptions")
	subs.Post("/", s.Subscribe)
	subs.Get("/me", s.GetMySubscription)
	subs.Post("/cancel", s.CancelSubscription)

	// Websocket endpoint (token via query param, validated before upgrade)
	ws := api.Group("/ws", middleware.WebSocketAuthRequired)
	ws.Get("/chat", s.WebSocketChatHandler())

	// Admin routes. Specific paths registered before the generic /:entity
	// moderation routes so they are matched first.
	admin := protected.Group("/admin", middleware.AdminRequired)
	admin.Get("/entities", s.AdminEntities)
	admin.Get("/status-choices", s.AdminStatusChoices)
	admin.Get("/actions", s.AdminActions)
	admin.Post("/sweep", s.AdminSweep)
	admin.Post("/plans", s.CreatePlan)
	admin.Delete("/plans/:id", s.DeletePlan)
	admin.Post("/subscriptions/:id/suspend", s.SuspendSubscription)
	admin.Post("/subscriptions/:id/resume", s.ResumeSubscription)
	admin.Get("/:entity/dead", s.AdminListDead)
	admin.Get("/:entity/all", s.AdminListAll)
	admin.Post("/:entity/purge", s.AdminPurge)
	admin.Post("/:entity/:id/restore", s.AdminRestore)
	admin.Delete("/:entity/:id", s.AdminHardDelete)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "TaskHive API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire the hub to the Redis subscriber so events published by other
	// instances reach locally connected clients.
	if s.redis != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
