// Package http exposes the persistence coordinator over HTTP and provides
// the client the extraction agent uses to reach it. It also fetches
// server-rendered conversation pages.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/chatvault"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// GestureHeader carries the user gesture of the originating request.
const GestureHeader = "X-Chatvault-Gesture"

// maxRequestBytes bounds the size of a save request body.
const maxRequestBytes = 64 << 20

// shutdownTimeout bounds graceful shutdown in Close.
const shutdownTimeout = 5 * time.Second

// Server serves the persistence coordinator.
type Server struct {
	ln     net.Listener
	server *http.Server

	// Addr is the bind address, e.g. "127.0.0.1:7749".
	Addr string

	Saver chatvault.Saver
}

// NewServer creates a new Server.
func NewServer(addr string, saver chatvault.Saver) *Server {
	return &Server{Addr: addr, Saver: saver}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.With(rejectCrossOrigin, middleware.AllowContentType("application/json")).
		Post("/save", s.handleSave)

	return r
}

// Open starts listening and serves in a background goroutine.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return chatvault.Errorf(chatvault.EUNAVAILABLE, "listen on %s: %v", s.Addr, err)
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		_ = s.server.Serve(s.ln)
	}()
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts the server down.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req chatvault.SaveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge,
				chatvault.FailedOutcome("", chatvault.Errorf(chatvault.ETOOLARGE, "request body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		writeJSON(w, http.StatusBadRequest,
			chatvault.FailedOutcome("", chatvault.Errorf(chatvault.EINVALID, "malformed save request: %v", err)))
		return
	}

	ctx := r.Context()
	if r.Header.Get(GestureHeader) == "1" {
		ctx = chatvault.WithUserGesture(ctx)
	}

	writeJSON(w, http.StatusOK, s.Saver.Save(ctx, req))
}

// rejectCrossOrigin refuses requests sent by web pages. Browsers set Origin
// on cross-origin POSTs; the agent never does.
func rejectCrossOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			writeJSON(w, http.StatusForbidden,
				chatvault.FailedOutcome("", chatvault.Errorf(chatvault.EPERMISSION, "cross-origin request from %s", origin)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
