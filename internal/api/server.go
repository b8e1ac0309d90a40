// Package api exposes boards over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/gmllt/prepboard/internal/board"
	"github.com/gmllt/prepboard/internal/boardview"
	"github.com/gmllt/prepboard/internal/notify"
)

type Server struct {
	boards    *boardview.Registry
	feed      *notify.Feed
	log       *zap.Logger
	staticDir string
}

func NewServer(boards *boardview.Registry, feed *notify.Feed, log *zap.Logger, staticDir string) *Server {
	return &Server{boards: boards, feed: feed, log: log.Named("http"), staticDir: staticDir}
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/boards", s.handleListBoards).Methods(http.MethodGet)

	b := api.PathPrefix("/boards/{board}").Subrouter()
	b.HandleFunc("", s.handleGetBoard).Methods(http.MethodGet)
	b.HandleFunc("", s.handleReplaceBoard).Methods(http.MethodPut)
	b.HandleFunc("/reload", s.handleReload).Methods(http.MethodPost)
	b.HandleFunc("/drag", s.handleDrag).Methods(http.MethodPost)
	b.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	b.HandleFunc("/columns/{column}/cards", s.handleAddCard).Methods(http.MethodPost)
	b.HandleFunc("/columns/{column}/move", s.handleMoveColumn).Methods(http.MethodPost)
	b.HandleFunc("/cards/{card}", s.handleUpdateCard).Methods(http.MethodPut)
	b.HandleFunc("/cards/{card}", s.handleRemoveCard).Methods(http.MethodDelete)
	b.HandleFunc("/cards/{card}/move", s.handleMoveCard).Methods(http.MethodPost)

	if s.staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(rec, r)

		s.log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

// controller resolves the {board} path variable, writing the error response
// itself when the board cannot be opened.
func (s *Server) controller(w http.ResponseWriter, r *http.Request) (*boardview.Controller, bool) {
	name := mux.Vars(r)["board"]
	c, err := s.boards.Get(r.Context(), name)
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return c, true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
		writeError(w, status, code, "Server error")
		return
	}
	writeError(w, status, code, err.Error())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.boards.Ping(r.Context()); err != nil {
		s.log.Warn("store unreachable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ok":    false,
			"store": "unreachable",
			"stats": s.boards.Stats(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "store": "ok", "stats": s.boards.Stats()})
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"boards": s.boards.Names()})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleReplaceBoard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var next board.Board
	if err := decodeBody(r, &next); err != nil {
		s.fail(w, err)
		return
	}
	if next.Name == "" {
		next.Name = c.Name()
	}
	if _, err := c.Replace(next); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), boardview.DefaultTimeout)
	defer cancel()
	b, err := c.Reload(ctx)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type dragResponse struct {
	Changed bool        `json:"changed"`
	Board   board.Board `json:"board"`
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var intent boardview.DragIntent
	if err := decodeBody(r, &intent); err != nil {
		s.fail(w, err)
		return
	}
	b, changed := c.Drag(intent)
	writeJSON(w, http.StatusOK, dragResponse{Changed: changed, Board: b})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": s.feed.Recent(c.Name())})
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var draft board.CardDraft
	if err := decodeBody(r, &draft); err != nil {
		s.fail(w, err)
		return
	}
	card, err := c.AddCard(mux.Vars(r)["column"], draft)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var draft board.CardDraft
	if err := decodeBody(r, &draft); err != nil {
		s.fail(w, err)
		return
	}
	if _, err := c.UpdateCard(mux.Vars(r)["card"], draft); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveCard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	if !c.RemoveCard(mux.Vars(r)["card"]) {
		s.fail(w, board.ErrCardNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveCardRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Index int    `json:"index"`
}

func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req moveCardRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	cardID := mux.Vars(r)["card"]
	b, changed := c.MoveCard(cardID, req.From, req.To, req.Index)
	if !changed {
		// a no-op move is fine; a move naming things that do not exist is not
		if _, ok := board.FindColumn(b, req.To); !ok {
			s.fail(w, board.ErrColumnNotFound)
			return
		}
		src, ok := board.FindColumn(b, req.From)
		if !ok || !containsCard(b.Columns[src], cardID) {
			s.fail(w, board.ErrCardNotFound)
			return
		}
	}
	writeJSON(w, http.StatusOK, b)
}

func containsCard(col board.Column, id string) bool {
	for _, c := range col.Cards {
		if c.ID == id {
			return true
		}
	}
	return false
}

type moveColumnRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleMoveColumn(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controller(w, r)
	if !ok {
		return
	}
	var req moveColumnRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	columnID := mux.Vars(r)["column"]
	b, changed := c.MoveColumn(columnID, req.Index)
	if !changed {
		if _, ok := board.FindColumn(b, columnID); !ok {
			s.fail(w, board.ErrColumnNotFound)
			return
		}
	}
	writeJSON(w, http.StatusOK, b)
}
