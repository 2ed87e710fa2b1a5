package main

import (
	"net/http"

	"starry-api/internal/api/handlers"
	"starry-api/internal/api/middleware"
	"starry-api/internal/auth"
	"starry-api/internal/config"
	"starry-api/internal/logger"
	"starry-api/internal/repository/postgres"
	chatService "starry-api/internal/service/chat"
	"starry-api/internal/service/llm"
	"starry-api/internal/tokenizer"

	"github.com/joho/godotenv"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file found, using environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	database, err := postgres.NewPostgresDB(cfg.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	counter, err := tokenizer.NewTiktoken(cfg.OpenAI.Model)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize tokenizer")
	}

	provider := llm.NewOpenAIProvider(&cfg.OpenAI, counter)

	authService := auth.NewService(database, &cfg.Auth)
	chatSvc := chatService.NewService(database, provider, counter, &cfg.Chat, &cfg.OpenAI)

	authHandlers := handlers.NewAuthHandlers(authService)
	chatHandlers := handlers.NewChatHandlers(chatSvc)

	authMiddleware := middleware.NewAuth(authService)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	// Go 1.22+ method-based routing
	mux := http.NewServeMux()

	public := func(h http.HandlerFunc) http.HandlerFunc {
		return enableCORS(rateLimiter.Limit(h))
	}
	protected := func(h middleware.AuthenticatedHandler) http.HandlerFunc {
		return enableCORS(rateLimiter.Limit(authMiddleware.Require(h)))
	}

	mux.HandleFunc("GET /api/health", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))

	// Public routes
	mux.HandleFunc("POST /api/auth/register", public(authHandlers.RegisterHandler))
	mux.HandleFunc("POST /api/auth/login", public(authHandlers.LoginHandler))

	// Protected routes
	mux.HandleFunc("GET /api/auth/profile", protected(authHandlers.ProfileHandler))
	mux.HandleFunc("PUT /api/auth/profile", protected(authHandlers.UpdateProfileHandler))
	mux.HandleFunc("POST /api/chat/message", protected(chatHandlers.MessageHandler))
	mux.HandleFunc("GET /api/chat/history", protected(chatHandlers.HistoryHandler))
	mux.HandleFunc("DELETE /api/chat/clear", protected(chatHandlers.ClearHandler))
	mux.HandleFunc("GET /api/chat/stats", protected(chatHandlers.StatsHandler))

	// CORS preflight
	mux.HandleFunc("OPTIONS /api/", enableCORS(func(w http.ResponseWriter, r *http.Request) {}))

	logger.Log.WithField("port", cfg.Server.Port).Info("Starry API starting")

	if err := http.ListenAndServe(":"+cfg.Server.Port, mux); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
