package devtools

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/reactor/pkg/reactor"
)

// maxPayloadBytes bounds mutation request bodies.
const maxPayloadBytes = 1 << 20

// GetterInfo describes one getter without evaluating it.
type GetterInfo struct {
	Name        string   `json:"name"`
	Valid       bool     `json:"valid"`
	Evaluations uint64   `json:"evaluations"`
	Deps        []string `json:"deps"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type getterResponse struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := reactor.Snapshot(s.engine.State())
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetters(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	gs := s.engine.Getters()
	infos := make([]GetterInfo, 0, len(gs.Names()))
	for _, name := range gs.Names() {
		deps := gs.Deps(name)
		if deps == nil {
			deps = []string{}
		}
		infos = append(infos, GetterInfo{
			Name:        name,
			Valid:       gs.Valid(name),
			Evaluations: gs.Evaluations(name),
			Deps:        deps,
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	value, err := s.engine.Getters().Get(name)
	if err == nil {
		// Encode under the lock; the value may hold live nodes.
		value = reactor.Snapshot(value)
	}
	s.mu.Unlock()

	switch {
	case errors.Is(err, reactor.ErrUnknownGetter):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		s.logger.Warn("devtools: getter failed", "getter", name, "err", err)
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, getterResponse{Name: name, Value: value})
	}
}

func (s *Server) handleMutations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	names := s.engine.Mutations().Names()
	s.mu.Unlock()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var payload any
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	s.mu.Lock()
	if !s.engine.Mutations().Has(name) {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, reactor.ErrUnknownMutation)
		return
	}
	err = s.engine.Mutations().CommitContext(r.Context(), name, payload)
	ev := s.last
	s.mu.Unlock()

	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Debug("devtools: websocket upgrade failed", "err", err)
		return
	}
	if !s.hub.serve(conn) {
		_ = conn.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
