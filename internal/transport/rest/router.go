package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"familyglitch/internal/config"
	"familyglitch/internal/service"
	"familyglitch/internal/tool"
	"familyglitch/internal/transport/rest/handler"
	"familyglitch/internal/transport/rest/middleware"
	"familyglitch/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AIConfig        *config.AIConfig
	Registry        *tool.Registry
	HealthChecks    map[string]handler.Pinger
	AuthService     *service.AuthService
	SessionService  *service.SessionService
	HostService     *service.HostService
	MinigameService *service.MinigameService
	WSHub           *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	chatHandler := handler.NewChatHandler(c.HostService, c.AuthService)
	healthHandler := handler.NewHealthHandler(c.AIConfig, c.Registry, c.HealthChecks)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.HostService)
	minigameHandler := handler.NewMinigameHandler(c.SessionService, c.MinigameService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Chat loop and diagnostics
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", chatHandler.Chat).Methods("POST", "OPTIONS")
	api.HandleFunc("/health", healthHandler.Health).Methods("GET", "OPTIONS")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService)
		v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionWS).Methods("GET")
	}

	// Session routes (require a token for that session)
	sessionRoutes := v1.PathPrefix("/sessions/{id}").Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("", sessionHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/act", sessionHandler.SetAct).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/end", sessionHandler.End).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/next", sessionHandler.Next).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/scoreboard", sessionHandler.Scoreboard).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/turns", sessionHandler.Turns).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/turns/{turnId}/complete", sessionHandler.CompleteTurn).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/turns/{turnId}/judge", sessionHandler.JudgeTurn).Methods("POST", "OPTIONS")

	// Mini-game routes
	sessionRoutes.HandleFunc("/minigames", minigameHandler.List).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/minigames", minigameHandler.Generate).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/minigames/{challengeId}/submit", minigameHandler.Submit).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
