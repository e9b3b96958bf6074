package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mcoot/homeguess/internal/api/handler"
	apimiddleware "github.com/mcoot/homeguess/internal/api/middleware"
	"github.com/mcoot/homeguess/internal/catalog"
	"github.com/mcoot/homeguess/internal/dependencies/random"
	"github.com/mcoot/homeguess/internal/middleware"
	"github.com/mcoot/homeguess/internal/realtime"
	"github.com/mcoot/homeguess/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController *session.Controller
	Catalog           *catalog.Catalog
	Random            random.Random
	Broadcaster       *realtime.Broadcaster
	HealthCheckers    map[string]handler.Checker
	CORSOrigins       []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	multiplayerHandler := handler.NewMultiplayerHandler(cfg.SessionController)
	catalogHandler := handler.NewCatalogHandler(cfg.Catalog, cfg.Random)
	healthHandler := handler.NewHealthHandler(cfg.Logger, cfg.HealthCheckers)
	realtimeHandler := handler.NewRealtimeHandler(cfg.Broadcaster)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Multiplayer session routes
	mp := api.PathPrefix("/multiplayer").Subrouter()
	mp.HandleFunc("/create", multiplayerHandler.Create).Methods(http.MethodPost)
	mp.HandleFunc("/join", multiplayerHandler.Join).Methods(http.MethodPost)
	mp.HandleFunc("/advance", multiplayerHandler.Advance).Methods(http.MethodPost)
	mp.HandleFunc("/guess", multiplayerHandler.Guess).Methods(http.MethodPost)
	mp.HandleFunc("/score", multiplayerHandler.Score).Methods(http.MethodPost)
	mp.HandleFunc("/leave", multiplayerHandler.Leave).Methods(http.MethodPost)
	mp.HandleFunc("/state", multiplayerHandler.State).Methods(http.MethodPost)
	mp.HandleFunc("/state", multiplayerHandler.StateQuery).Methods(http.MethodGet)
	mp.HandleFunc("/delete", multiplayerHandler.Delete).Methods(http.MethodPost)

	// mux answers a method mismatch with 404 once a later route accepts the
	// method, so known paths get an explicit JSON 405
	for _, path := range []string{"/create", "/join", "/advance", "/guess", "/score", "/leave", "/delete"} {
		mp.Handle(path, handler.MethodNotAllowed(http.MethodPost))
	}
	mp.Handle("/state", handler.MethodNotAllowed(http.MethodGet, http.MethodPost))

	// Catalog routes
	api.HandleFunc("/random-item", catalogHandler.RandomItem).Methods(http.MethodGet)
	api.HandleFunc("/zips", catalogHandler.Zips).Methods(http.MethodGet)

	// Operational routes
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)
	api.HandleFunc("/realtime/stats", realtimeHandler.Stats).Methods(http.MethodGet)

	for _, path := range []string{"/random-item", "/zips", "/health", "/realtime/stats"} {
		api.Handle(path, handler.MethodNotAllowed(http.MethodGet))
	}

	// Websocket push channel. Panics after the upgrade cannot write JSON.
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	ws.Use(loggingMiddleware)
	ws.HandleFunc("", cfg.Broadcaster.ServeWS).Methods(http.MethodGet)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: origins,
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(r)
}
