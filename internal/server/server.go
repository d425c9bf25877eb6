// Package server exposes the scoring core to a presentation layer over JSON
// HTTP endpoints and websocket live views.
package server

import (
	"context"
	"net/http"

	"scores-keeper/internal/domain"
	"scores-keeper/internal/leaderboard"
	"scores-keeper/internal/live"
	"scores-keeper/internal/session"
)

// Catalog is the game and player management slice of the entity store.
type Catalog interface {
	CreateGame(ctx context.Context, game domain.Game) (domain.Game, error)
	Games(ctx context.Context) ([]domain.Game, error)
	GameByID(ctx context.Context, id int64) (domain.Game, error)
	UpdateGameInfo(ctx context.Context, id int64, name, description string) (domain.Game, error)
	DeleteGame(ctx context.Context, id int64) error

	CreatePlayer(ctx context.Context, player domain.Player) (domain.Player, error)
	UpdatePlayer(ctx context.Context, player domain.Player) (domain.Player, error)
	Players(ctx context.Context) ([]domain.Player, error)
}

type Server struct {
	catalog   Catalog
	manager   *session.Manager
	projector *live.Projector
	standings *leaderboard.Cache
}

// New wires the HTTP surface. standings may be nil when the Redis cache is
// not configured.
func New(catalog Catalog, manager *session.Manager, projector *live.Projector, standings *leaderboard.Cache) *Server {
	return &Server{
		catalog:   catalog,
		manager:   manager,
		projector: projector,
		standings: standings,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	mux.HandleFunc("PUT /api/games/{id}", s.handleUpdateGame)
	mux.HandleFunc("DELETE /api/games/{id}", s.handleDeleteGame)
	mux.HandleFunc("GET /api/games/{id}/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/games/{id}/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/games/{id}/stats", s.handleGameStats)
	mux.HandleFunc("GET /api/games/{id}/standings", s.handleGameStandings)
	mux.HandleFunc("POST /api/players", s.handleCreatePlayer)
	mux.HandleFunc("GET /api/players", s.handleListPlayers)
	mux.HandleFunc("PUT /api/players/{id}", s.handleUpdatePlayer)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionDetail)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/rounds", s.handleSubmitRound)
	mux.HandleFunc("PUT /api/sessions/{id}/rounds/{round}", s.handleEditRound)
	mux.HandleFunc("DELETE /api/sessions/{id}/rounds/{round}", s.handleDeleteRound)
	mux.HandleFunc("POST /api/sessions/{id}/finish", s.handleFinishSession)
	mux.HandleFunc("GET /ws/sessions/{id}", s.handleSessionSocket)
	mux.HandleFunc("GET /ws/games/{id}/stats", s.handleStatsSocket)
	return mux
}
