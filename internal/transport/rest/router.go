package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"moonhollow/internal/service"
	"moonhollow/internal/transport/rest/handler"
	"moonhollow/internal/transport/rest/middleware"
	"moonhollow/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService *service.AuthService
	GameService *service.GameService
	WSHub       *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.GameService)
	gameHandler := handler.NewGameHandler(c.GameService)
	archiveHandler := handler.NewArchiveHandler(c.GameService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{id}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{id}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games", archiveHandler.ListRecent).Methods("GET", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/rooms/{id}", wsHandler.RoomWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/rooms/{id}/leave", roomHandler.Leave).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/skip", gameHandler.Skip).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/chat", gameHandler.Chat).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/vote", gameHandler.Vote).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/night-action", gameHandler.NightAction).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/ai-players", roomHandler.AddAI).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/ai-players", roomHandler.RemoveAI).Methods("DELETE", "OPTIONS")

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
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
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
