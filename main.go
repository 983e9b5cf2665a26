package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/mapletax/backend/src/config"
	"github.com/username/mapletax/backend/src/database"
	"github.com/username/mapletax/backend/src/handlers"
	"github.com/username/mapletax/backend/src/logger"
	"github.com/username/mapletax/backend/src/partners"
	"github.com/username/mapletax/backend/src/processors"
	"github.com/username/mapletax/backend/src/security"
	"github.com/username/mapletax/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("MapleTax backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing result cache...")
	resultCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	logger.L.Info("Result cache initialized.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	userHandler := handlers.NewUserHandler(authService)

	calculator := processors.NewCalculator()
	validator := processors.NewValidator()
	ruleEngine := processors.NewRuleEngine()

	filingService := services.NewFilingService(calculator, validator, ruleEngine, resultCache)

	submissionStore := partners.NewSQLiteStore(database.DB)
	provider, err := partners.GetProvider(config.Cfg.FilingPartner, submissionStore)
	if err != nil {
		logger.L.Error("Failed to initialize filing partner", "partner", config.Cfg.FilingPartner, "error", err)
		os.Exit(1)
	}
	submissionService := services.NewSubmissionService(filingService, provider, emailService)

	filingHandler := handlers.NewFilingHandler(filingService)
	documentHandler := handlers.NewDocumentHandler(filingService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes (no CSRF needed for these GETs)
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)

	// Auth actions router - POST routes generally need CSRF
	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.HandleFunc("POST /logout", userHandler.AuthMiddleware(userHandler.LogoutUserHandler))

	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)(authActionRouter)))

	// CSRF and Auth middleware for protected API routes
	csrfProtection := handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)
	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(http.HandlerFunc(userHandler.AuthMiddleware(handler)))
	}

	apiRouter.Handle("GET /api/filing", applyCsrfAndAuth(filingHandler.HandleGetFiling))
	apiRouter.Handle("PUT /api/filing/personal-info", applyCsrfAndAuth(filingHandler.HandleUpdatePersonalInfo))
	apiRouter.Handle("PUT /api/filing/deductions", applyCsrfAndAuth(filingHandler.HandleUpdateDeductions))
	apiRouter.Handle("POST /api/filing/records/{list}", applyCsrfAndAuth(filingHandler.HandleAddRecord))
	apiRouter.Handle("PUT /api/filing/records/{list}/{id}", applyCsrfAndAuth(filingHandler.HandleUpdateRecord))
	apiRouter.Handle("DELETE /api/filing/records/{list}/{id}", applyCsrfAndAuth(filingHandler.HandleDeleteRecord))
	apiRouter.Handle("GET /api/filing/summary", applyCsrfAndAuth(filingHandler.HandleGetSummary))
	apiRouter.Handle("GET /api/filing/suggestions", applyCsrfAndAuth(filingHandler.HandleGetSuggestions))
	apiRouter.Handle("POST /api/documents/cross-check", applyCsrfAndAuth(documentHandler.HandleCrossCheckDocument))
	apiRouter.Handle("POST /api/documents/validate", applyCsrfAndAuth(documentHandler.HandleValidateDocuments))
	apiRouter.Handle("POST /api/filing/submit", applyCsrfAndAuth(submissionHandler.HandleSubmitFiling))
	apiRouter.Handle("GET /api/submissions/{confirmationNumber}", applyCsrfAndAuth(submissionHandler.HandleGetSubmissionStatus))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "MapleTax Backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
