// Package stream exposes the HTTP surface of the watcher: a websocket
// feed of observations plus metrics and health endpoints.
package stream

import (
	"net/http"
	"time"

	"editwatch/internal/event"
	"editwatch/internal/logging"
	"editwatch/internal/metrics"
)

// Server wires the observation bus into HTTP handlers.
type Server struct {
	Logger         *logging.Logger
	Registry       *metrics.Registry
	Bus            *event.Bus[event.Observation]
	AuthToken      string
	AllowedOrigins []string
}

// Routes returns the mux serving the watcher's HTTP endpoints.
func (server *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/observations", server.handleObservations)
	mux.HandleFunc("GET /metrics", server.handleMetrics)
	mux.HandleFunc("GET /healthz", server.handleHealthz)
	return mux
}

func (server *Server) handleObservations(w http.ResponseWriter, r *http.Request) {
	if !validateToken(r, server.AuthToken) {
		writeWSError(w, r, server.Logger, wsError{
			Status:  http.StatusUnauthorized,
			Message: "unauthorized",
		})
		return
	}

	if server.Bus == nil {
		writeWSError(w, r, server.Logger, wsError{
			Status:  http.StatusInternalServerError,
			Message: "observation stream unavailable",
		})
		return
	}

	output, cancel := server.Bus.Subscribe()
	if output == nil {
		writeWSError(w, r, server.Logger, wsError{
			Status:  http.StatusInternalServerError,
			Message: "observation stream unavailable",
		})
		return
	}
	defer cancel()

	conn, err := upgradeWebSocket(w, r, server.AllowedOrigins)
	if err != nil {
		logWSError(server.Logger, r, wsError{
			Status:  http.StatusBadRequest,
			Message: "websocket upgrade failed",
			Err:     err,
		})
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Drain control frames so pings and close handshakes are processed.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case observation, ok := <-output:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
			if err := conn.WriteJSON(observation); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (server *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	registry := server.Registry
	if registry == nil {
		registry = metrics.Default
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = registry.WritePrometheus(w)
}

func (server *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
