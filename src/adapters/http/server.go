package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"entitycore/src/domain/model"
)

// Server exposes the users entity type over HTTP.
type Server struct {
	logger   *slog.Logger
	server   *http.Server
	mux      *http.ServeMux
	port     int
	userType *model.Type
}

func NewServer(logger *slog.Logger, port int, userType *model.Type) *Server {
	server := &Server{
		mux:      http.NewServeMux(),
		port:     port,
		logger:   logger,
		userType: userType,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	server.mux.HandleFunc("POST /v1/users", server.CreateUser)
	server.mux.HandleFunc("GET /v1/users/{id}", server.GetUser)
	server.mux.HandleFunc("PATCH /v1/users/{id}", server.UpdateUser)
	server.mux.HandleFunc("DELETE /v1/users/{id}", server.DeleteUser)

	return server
}

// Handler returns the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
