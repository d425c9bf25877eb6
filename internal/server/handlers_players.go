package server

import (
	"net/http"

	"scores-keeper/internal/domain"
)

type playerRequest struct {
	Name        string `json:"name"`
	AvatarColor string `json:"avatar_color"`
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	player, err := s.catalog.CreatePlayer(r.Context(), domain.Player{
		Name:        req.Name,
		AvatarColor: req.AvatarColor,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.catalog.Players(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	player, err := s.catalog.UpdatePlayer(r.Context(), domain.Player{
		ID:          id,
		Name:        req.Name,
		AvatarColor: req.AvatarColor,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}
