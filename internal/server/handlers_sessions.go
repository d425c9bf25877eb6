package server

import (
	"net/http"
)

type createSessionRequest struct {
	PlayerIDs []int64 `json:"player_ids"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var req createSessionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := s.manager.CreateSession(r.Context(), gameID, req.PlayerIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	sessions, err := s.manager.SessionsForGame(r.Context(), gameID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	detail, err := s.manager.Detail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := s.manager.DeleteSession(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roundRequest struct {
	Scores map[int64]int `json:"scores"`
}

func (s *Server) handleSubmitRound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	var req roundRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.manager.SubmitRound(r.Context(), id, req.Scores); err != nil {
		writeDomainError(w, err)
		return
	}
	detail, err := s.manager.Detail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleEditRound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	round, ok := pathRound(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}
	var req roundRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.manager.EditRound(r.Context(), id, round, req.Scores); err != nil {
		writeDomainError(w, err)
		return
	}
	detail, err := s.manager.Detail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	round, ok := pathRound(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}
	if err := s.manager.DeleteRound(r.Context(), id, round); err != nil {
		writeDomainError(w, err)
		return
	}
	detail, err := s.manager.Detail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := s.manager.Finish(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	detail, err := s.manager.Detail(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
