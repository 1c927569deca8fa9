// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package relay

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/strider/core"
)

// RelayConfig holds the relay server configuration. The oracle key is the
// private half of the identity the state machine's authorizer was built
// with; the relay countersigns verified telemetry with it.
type RelayConfig struct {
	ListenAddress string
	OracleKey     ed25519.PrivateKey
}

// Relay is the REST API server fronting the challenge state machine. It
// verifies device signatures on telemetry submissions and relays them to
// the state machine under the oracle credential.
type Relay struct {
	config     RelayConfig
	logger     *slog.Logger
	core       *core.Core
	httpServer *http.Server
	mu         sync.Mutex
}

// New creates a new relay API server instance.
func New(
	cfg RelayConfig,
	c *core.Core,
	logger *slog.Logger,
) (*Relay, error) {
	if c == nil {
		return nil, errors.New("no state machine provided")
	}
	if len(cfg.OracleKey) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid oracle signing key")
	}
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "relay")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":3000"
	}
	return &Relay{
		config: cfg,
		logger: logger,
		core:   c,
	}, nil
}

// Start starts the HTTP server in a background goroutine.
func (r *Relay) Start(
	ctx context.Context,
) error {
	r.mu.Lock()
	if r.httpServer != nil {
		r.mu.Unlock()
		return errors.New("server already started")
	}

	server := &http.Server{
		Addr:              r.config.ListenAddress,
		Handler:           r.routes(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	r.httpServer = server
	r.mu.Unlock()

	// Start the server with deterministic error detection
	if err := r.startServer(server); err != nil {
		r.mu.Lock()
		r.httpServer = nil
		r.mu.Unlock()
		return err
	}

	r.logger.Info(
		"relay API listener started on " +
			r.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		r.mu.Lock()
		srv := r.httpServer
		r.httpServer = nil
		r.mu.Unlock()

		if srv != nil {
			r.logger.Debug(
				"context cancelled, shutting down relay API server",
			)
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(
				shutdownCtx,
			); err != nil {
				r.logger.Error(
					"failed to shutdown relay API server on "+
						"context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// routes builds the request mux. Factored out of Start so tests can drive
// handlers without a listening socket.
func (r *Relay) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", r.handleRoot)
	mux.HandleFunc("GET /health", r.handleHealth)
	mux.HandleFunc(
		"POST /api/v0/challenges",
		r.handleCreateChallenge,
	)
	mux.HandleFunc(
		"GET /api/v0/challenges/{address}",
		r.handleGetChallenge,
	)
	mux.HandleFunc(
		"POST /api/v0/challenges/{address}/join",
		r.handleJoinChallenge,
	)
	mux.HandleFunc(
		"GET /api/v0/challenges/{address}/participants/{user}",
		r.handleGetParticipant,
	)
	mux.HandleFunc(
		"POST /api/v0/challenges/{address}/sync",
		r.handleSync,
	)
	mux.HandleFunc(
		"POST /api/v0/challenges/{address}/withdraw",
		r.handleWithdraw,
	)
	mux.HandleFunc(
		"GET /api/v0/accounts/{address}",
		r.handleGetAccount,
	)
	mux.HandleFunc(
		"POST /api/v0/accounts/{address}/deposits",
		r.handleDeposit,
	)
	return mux
}

// Stop gracefully shuts down the HTTP server.
func (r *Relay) Stop(
	ctx context.Context,
) error {
	r.mu.Lock()
	srv := r.httpServer
	r.httpServer = nil
	r.mu.Unlock()

	if srv != nil {
		r.logger.Debug(
			"shutting down relay API server",
		)
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown relay API server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer starts the HTTP server with deterministic error detection.
// It binds the listening socket first so port conflicts are detected
// immediately, then serves in a background goroutine.
func (r *Relay) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for relay API server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			r.logger.Error(
				"relay API server error",
				"error", err,
			)
		}
	}()
	return nil
}
