// Package server exposes the single-page chat UI and its JSON API.
//
// Each browser gets a cookie-scoped session; nothing is shared across
// sessions except the read-only memoized catalog.
package server

import (
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"BukuBot/internal/bot"
	"BukuBot/internal/config"
	"BukuBot/internal/session"
)

//go:embed index.html
var indexHTML []byte

const sessionCookie = "bukubot_session"

// visitor pairs a session with the lock that serializes its turns. One
// visitor's turns are sequential; the lock only matters when the same
// cookie is open in two tabs.
type visitor struct {
	mu   sync.Mutex
	sess *session.Session
}

// Server handles the chat UI and API.
type Server struct {
	bot      *bot.Bot
	cfg      config.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	visitors map[string]*visitor
}

// New creates a Server around the given bot.
func New(b *bot.Bot, cfg config.Config, logger *slog.Logger) *Server {
	return &Server{
		bot:      b,
		cfg:      cfg,
		logger:   logger,
		visitors: make(map[string]*visitor),
	}
}

// Router builds the chi router for the chat surface.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/chat/clear", s.handleClear)
		r.Post("/catalog/reload", s.handleReload)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/stats", s.handleStats)
		r.Get("/orders", s.handleOrders)
	})

	return r
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply  string `json:"reply,omitempty"`
	Orders int    `json:"orders"`
	Error  string `json:"error,omitempty"`
}

type catalogEntryView struct {
	Title         string  `json:"title"`
	NormalPrice   float64 `json:"normal_price"`
	DiscountPrice float64 `json:"discount_price"`
	Stock         int     `json:"stock"`
	LowStock      bool    `json:"low_stock"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	v := s.visitorFor(w, r)
	v.mu.Lock()
	defer v.mu.Unlock()

	reply, err := s.bot.Turn(r.Context(), v.sess, req.Message)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, chatResponse{Error: err.Error(), Orders: v.sess.Orders})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Orders: v.sess.Orders})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	v := s.visitorFor(w, r)
	v.mu.Lock()
	v.sess.Clear()
	v.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	cat, err := s.bot.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"catalog_size": len(cat)})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.bot.Catalog()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries := make([]catalogEntryView, 0, len(cat))
	for _, entry := range cat {
		entries = append(entries, catalogEntryView{
			Title:         entry.Title,
			NormalPrice:   entry.NormalPrice,
			DiscountPrice: entry.DiscountPrice,
			Stock:         entry.Stock,
			LowStock:      entry.Stock < s.cfg.LowStockThreshold,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries":             entries,
		"low_stock_threshold": s.cfg.LowStockThreshold,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	cat, err := s.bot.Catalog()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	v := s.visitorFor(w, r)
	v.mu.Lock()
	messages := v.sess.Len()
	orders := v.sess.Orders
	v.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{
		"messages":     messages,
		"orders":       orders,
		"catalog_size": len(cat),
	})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	entries, err := s.bot.RecentOrders(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": entries})
}

// visitorFor resolves the request's session from its cookie, creating both
// the cookie and the session on first contact.
func (s *Server) visitorFor(w http.ResponseWriter, r *http.Request) *visitor {
	id := ""
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id = c.Value
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[id]
	if !ok {
		v = &visitor{sess: session.New(id)}
		s.visitors[id] = v
		s.logger.Info("created new session", "session_id", id)
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
