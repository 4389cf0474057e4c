package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/choreboard/backend/internal/handler"
	"github.com/choreboard/backend/internal/middleware"
	"github.com/choreboard/backend/internal/recurrence"
	"github.com/choreboard/backend/internal/store"
	ws "github.com/choreboard/backend/internal/websocket"
)

type Server struct {
	db         *sql.DB
	hub        *ws.Hub
	choreH     *handler.ChoreHandler
	householdH *handler.HouseholdHandler
	engine     *recurrence.Engine
	logger     *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	publisher := ws.NewPublisher(hub, logger.With("component", "events"))

	choreStore := store.NewChoreStore(db)
	householdStore := store.NewHouseholdStore(db)

	return &Server{
		db:         db,
		hub:        hub,
		choreH:     handler.NewChoreHandler(choreStore, householdStore, publisher, logger.With("component", "chore")),
		householdH: handler.NewHouseholdHandler(householdStore, logger.With("component", "household")),
		engine:     recurrence.NewEngine(choreStore, publisher, logger.With("component", "recurrence")),
		logger:     logger,
	}
}

// Engine returns the recurrence engine for the scheduler.
func (s *Server) Engine() *recurrence.Engine {
	return s.engine
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Chore API routes
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("GET /api/chores/{id}", s.choreH.Get)
	mux.HandleFunc("PUT /api/chores/{id}", s.choreH.Update)
	mux.HandleFunc("PATCH /api/chores/{id}/status", s.choreH.UpdateStatus)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)

	// Household API routes
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("GET /api/households", s.householdH.List)
	mux.HandleFunc("GET /api/households/{id}", s.householdH.Get)
	mux.HandleFunc("PUT /api/households/{id}", s.householdH.Update)
	mux.HandleFunc("DELETE /api/households/{id}", s.householdH.Delete)

	// Event stream
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
