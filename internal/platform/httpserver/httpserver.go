// Package httpserver builds the API server with timeouts sized for the
// dispatch workload.
package httpserver

import (
	"net/http"
	"time"
)

// Paid dispatches hold the connection while providers run, so the write
// timeout must clear the 30s provider fan-out budget with headroom.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 40 * time.Second
	idleTimeout       = 2 * time.Minute
)

// New builds the HTTP server for the given handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
