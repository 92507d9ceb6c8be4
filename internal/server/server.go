// Package server exposes the HTTP surface: the receipt pipeline endpoint,
// the health check, and the expense ledger API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/receiptworks/expense-processor/internal/common"
)

// Options holds configuration for the HTTP server.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8000".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// CORSOrigin is the origin allowed by the CORS middleware.
	CORSOrigin string
}

// NewOptions maps HTTP settings from the application config.
func NewOptions(cfg *common.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr(),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		CORSOrigin:        cfg.HTTP.CORSOrigin,
	}
}

// NewServer wires up and returns a configured *http.Server serving the
// handler's routes behind CORS, logging, and panic-recovery middleware.
func NewServer(h *Handler, opts Options, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	h.Register(mux)

	handler := withCORS(mux, opts.CORSOrigin)
	handler = withLogging(handler, logger)
	handler = withRecovery(handler, logger)

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
	}
}
