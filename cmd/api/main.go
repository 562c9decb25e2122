package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/hearthshare/hearthshare/docs"
	"github.com/hearthshare/hearthshare/internal/config"
	"github.com/hearthshare/hearthshare/internal/database"
	"github.com/hearthshare/hearthshare/internal/expense"
	"github.com/hearthshare/hearthshare/internal/expense/split"
	"github.com/hearthshare/hearthshare/internal/group"
	"github.com/hearthshare/hearthshare/internal/notification"
	"github.com/hearthshare/hearthshare/internal/user"
	mw "github.com/hearthshare/hearthshare/pkg/middleware"
)

// @title           HearthShare API
// @version         1.0
// @description     Shared-expense ledger and settlement service for households.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Redis is optional; without it balance reads skip the cache
	redisClient := database.NewRedisClient(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Split strategy factory
	splitFactory := split.NewFactory()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	userHandler := user.NewHandler(userService, cfg.JWTSecret)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo)
	groupHandler := group.NewHandler(groupService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Expense feature (ledger, debts, settlements)
	var balanceCache expense.BalanceCache
	if redisClient != nil {
		balanceCache = expense.NewRedisBalanceCache(redisClient, 0)
	}
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, splitFactory, userService, groupService, balanceCache, notificationService)
	expenseHandler := expense.NewHandler(expenseService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Users mount their own auth; register and login stay public
		r.Mount("/users", userHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(cfg.JWTSecret))
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/expenses", expenseHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
