package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/jharmon/splittab/docs"
	"github.com/jharmon/splittab/internal/config"
	"github.com/jharmon/splittab/internal/database"
	"github.com/jharmon/splittab/internal/draft"
	"github.com/jharmon/splittab/internal/expense"
	"github.com/jharmon/splittab/internal/roster"
	"github.com/jharmon/splittab/internal/scanning"
	"github.com/jharmon/splittab/internal/settlement"
	"github.com/jharmon/splittab/internal/user"
	mw "github.com/jharmon/splittab/pkg/middleware"
)

// @title        SplitTab API
// @version      1.0
// @description  Receipt scanning, bill splitting and settlement tracking for groups
// @BasePath     /api/v1
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	logger.Info("Connected to database")

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Roster feature (groups + guests)
	rosterRepo := roster.NewRepository(db)
	rosterService := roster.NewService(rosterRepo)
	rosterHandler := roster.NewHandler(rosterService)

	// Expense feature
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementRepo := settlement.NewRepository(db)
	settlementService := settlement.NewService(settlementRepo)
	settlementHandler := settlement.NewHandler(settlementService)

	// Receipt scanning runs without a Gemini key; scans then fail fast and
	// the draft flow falls back to manual entry
	var extractor scanning.TextExtractor
	if cfg.GeminiAPIKey != "" {
		gemini, err := scanning.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, time.Duration(cfg.ScanTimeoutSecs)*time.Second)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize Gemini")
		}
		defer gemini.Close()
		extractor = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, receipt scanning disabled")
	}
	scanStore := scanning.NewJobStore(extractor, logger)
	scanHandler := scanning.NewHandler(scanStore)

	// Draft wizard
	draftService := draft.NewService(expenseService)
	draftHandler := draft.NewHandler(draftService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(mw.UserMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", rosterHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
		r.Mount("/scans", scanHandler.Routes())
		r.Mount("/drafts", draftHandler.Routes())
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.WithField("port", port).Info("Server starting")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
