package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type roomDirectory interface {
	FindRoomIDByJoinCode(ctx context.Context, joinCode string) (string, error)
}

type Server struct {
	logger    *slog.Logger
	directory roomDirectory
}

func New(logger *slog.Logger, directory roomDirectory) *Server {
	return &Server{
		logger:    logger,
		directory: directory,
	}
}

func (that *Server) Start(port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", that.pingHandler)
	mux.HandleFunc("/roomhelper", that.roomHelperHandler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
