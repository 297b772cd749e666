// internal/handlers/api.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/florets/hanabi/internal/game"
	"github.com/florets/hanabi/internal/service"
)

// Server binds the engine operations to their REST routes:
//
//	PUT  /game                      create a game
//	GET  /game/{id}                 spectator state
//	GET  /game/{id}/{player}        player-filtered state
//	POST /play/{id}/{player}        card_index form field
//	POST /discard/{id}/{player}     card_index form field
//	POST /inform/{id}/{player}      recipient + one of colour/rank
//	GET  /history/{id}[/{player}]   log lines
type Server struct {
	Service *service.Service
	Logger  *logrus.Logger
}

func NewServer(svc *service.Service, logger *logrus.Logger) *Server {
	return &Server{Service: svc, Logger: logger}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) GameHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		s.createGame(w, r)
	case http.MethodGet:
		s.getState(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Players []string `json:"players"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "body must be JSON with a players array"})
		return
	}
	id, err := s.Service.CreateGame(r.Context(), body.Players)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	id, viewer, ok := s.gameAndViewer(w, r, "/game/")
	if !ok {
		return
	}
	view, err := s.Service.GetState(r.Context(), id, viewer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) PlayHandler(w http.ResponseWriter, r *http.Request) {
	id, player, cardIndex, ok := s.actionRequest(w, r, "/play/")
	if !ok {
		return
	}
	result, err := s.Service.Play(r.Context(), id, player, cardIndex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) DiscardHandler(w http.ResponseWriter, r *http.Request) {
	id, player, cardIndex, ok := s.actionRequest(w, r, "/discard/")
	if !ok {
		return
	}
	if err := s.Service.Discard(r.Context(), id, player, cardIndex); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"discarded": true})
}

func (s *Server) InformHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, requester, ok := s.gamePlayerPath(w, r, "/inform/")
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed form body"})
		return
	}
	recipient := r.PostFormValue("recipient")

	var colour *game.Colour
	if v := r.PostFormValue("colour"); v != "" {
		c := game.Colour(v)
		colour = &c
	}
	var rank *int
	if v := r.PostFormValue("rank"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "rank must be an integer"})
			return
		}
		rank = &n
	}

	positions, err := s.Service.Hint(r.Context(), id, requester, recipient, colour, rank)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"positions": positions})
}

func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, viewer, ok := s.gameAndViewer(w, r, "/history/")
	if !ok {
		return
	}
	lines, err := s.Service.History(r.Context(), id, viewer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// actionRequest parses POST {prefix}{id}/{player} with a card_index form
// field, shared by play and discard.
func (s *Server) actionRequest(w http.ResponseWriter, r *http.Request, prefix string) (uuid.UUID, string, int, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return uuid.Nil, "", 0, false
	}
	id, player, ok := s.gamePlayerPath(w, r, prefix)
	if !ok {
		return uuid.Nil, "", 0, false
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed form body"})
		return uuid.Nil, "", 0, false
	}
	cardIndex, err := strconv.Atoi(r.PostFormValue("card_index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "card_index must be an integer"})
		return uuid.Nil, "", 0, false
	}
	return id, player, cardIndex, true
}

// gamePlayerPath parses {prefix}{id}/{player}, both segments required.
func (s *Server) gamePlayerPath(w http.ResponseWriter, r *http.Request, prefix string) (uuid.UUID, string, bool) {
	segs := pathSegments(r.URL.Path, prefix)
	if len(segs) != 2 || segs[0] == "" || segs[1] == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "expected " + prefix + "{game_id}/{player}"})
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(segs[0])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed game id " + segs[0]})
		return uuid.Nil, "", false
	}
	return id, segs[1], true
}

// gameAndViewer parses {prefix}{id} with an optional trailing /{player}.
func (s *Server) gameAndViewer(w http.ResponseWriter, r *http.Request, prefix string) (uuid.UUID, *string, bool) {
	segs := pathSegments(r.URL.Path, prefix)
	if len(segs) < 1 || len(segs) > 2 || segs[0] == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "expected " + prefix + "{game_id}[/{player}]"})
		return uuid.Nil, nil, false
	}
	id, err := uuid.Parse(segs[0])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "malformed game id " + segs[0]})
		return uuid.Nil, nil, false
	}
	var viewer *string
	if len(segs) == 2 && segs[1] != "" {
		viewer = &segs[1]
	}
	return id, viewer, true
}

func pathSegments(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// writeError maps the engine's error kinds onto HTTP statuses. The message
// keeps the engine's context (which index, which player) verbatim.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind, status := classify(err)
	if status == http.StatusInternalServerError {
		s.Logger.WithError(err).Error("request failed")
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, errorResponse{Error: kind, Message: err.Error()})
}

func classify(err error) (string, int) {
	switch {
	case errors.Is(err, game.ErrInvalidPlayerCount):
		return "invalid_player_count", http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidCardIndex):
		return "invalid_card_index", http.StatusBadRequest
	case errors.Is(err, game.ErrAmbiguousHintCriterion):
		return "ambiguous_hint_criterion", http.StatusBadRequest
	case errors.Is(err, game.ErrUnknownGame):
		return "unknown_game", http.StatusNotFound
	case errors.Is(err, game.ErrUnknownPlayer):
		return "unknown_player", http.StatusNotFound
	case errors.Is(err, game.ErrGameOver):
		return "game_over", http.StatusConflict
	case errors.Is(err, game.ErrBusy):
		return "busy", http.StatusServiceUnavailable
	default:
		return "internal", http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
