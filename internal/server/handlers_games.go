package server

import (
	"net/http"

	"scores-keeper/internal/domain"
)

type gameRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	MinPlayers      int    `json:"min_players"`
	MaxPlayers      int    `json:"max_players"`
	LowestScoreWins bool   `json:"lowest_score_wins"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, err := s.catalog.CreateGame(r.Context(), domain.Game{
		Name:            req.Name,
		Description:     req.Description,
		MinPlayers:      req.MinPlayers,
		MaxPlayers:      req.MaxPlayers,
		LowestScoreWins: req.LowestScoreWins,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.catalog.Games(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	game, err := s.catalog.GameByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

type gameInfoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var req gameInfoRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	game, err := s.catalog.UpdateGameInfo(r.Context(), id, req.Name, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	if err := s.catalog.DeleteGame(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGameStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	stats, err := s.manager.StatsForGame(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGameStandings(w http.ResponseWriter, r *http.Request) {
	if s.standings == nil {
		writeError(w, http.StatusServiceUnavailable, "standings cache is not configured")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	entries, err := s.standings.TopWinners(r.Context(), id, 10)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
