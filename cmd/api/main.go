package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/aldawsari/tadayun/internal/collection"
	"github.com/aldawsari/tadayun/internal/config"
	"github.com/aldawsari/tadayun/internal/database"
	"github.com/aldawsari/tadayun/internal/notification"
	"github.com/aldawsari/tadayun/internal/party"
	"github.com/aldawsari/tadayun/internal/user"
	"github.com/aldawsari/tadayun/internal/wallet"
	"github.com/aldawsari/tadayun/pkg/logging"
	mw "github.com/aldawsari/tadayun/pkg/middleware"

	_ "github.com/aldawsari/tadayun/docs"
)

// @title        Tadayun API
// @version      1.0
// @description  Peer-to-peer debt and credit tracking with wallets and partial payments
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("connected to database")

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Party feature (friend directory and counterparty resolution)
	partyRepo := party.NewRepository(db)
	partyService := party.NewService(partyRepo, userRepo)
	partyHandler := party.NewHandler(partyService)

	// Wallet feature
	walletRepo := wallet.NewRepository(db)
	walletService := wallet.NewService(walletRepo)
	walletHandler := wallet.NewHandler(walletService)

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Collection feature (lifecycle, payment ledger, allocation)
	collectionRepo := collection.NewRepository(db, walletRepo)
	collectionService := collection.NewService(collectionRepo, walletRepo, partyService, notificationService)
	collectionHandler := collection.NewHandler(collectionService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(mw.TestUserMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())
		r.Mount("/friends", partyHandler.Routes())
		r.Mount("/wallets", walletHandler.Routes())
		r.Mount("/collections", collectionHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
