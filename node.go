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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package strider

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/strider/core"
	"github.com/blinklabs-io/strider/database"
	"github.com/blinklabs-io/strider/event"
	"github.com/blinklabs-io/strider/oracle"
	"github.com/blinklabs-io/strider/relay"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	core          *core.Core
	relay         *relay.Relay
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Core returns the challenge state machine. It is only available after Run
// has set up the node.
func (n *Node) Core() *core.Core {
	return n.core
}

func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:      n.config.dataDir,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Configure oracle authorization with the signing key's public half
	authorizer, err := oracle.NewAuthorizer(
		n.config.oracleKey.Public().(ed25519.PublicKey),
	)
	if err != nil {
		return fmt.Errorf("failed to configure oracle: %w", err)
	}
	// Load challenge state machine
	c, err := core.New(core.Config{
		Logger:       n.config.logger,
		EventBus:     n.eventBus,
		Database:     n.db,
		Oracle:       authorizer,
		PromRegistry: n.config.promRegistry,
		TimeNow:      n.config.timeNow,
	})
	if err != nil {
		return fmt.Errorf("failed to load state machine: %w", err)
	}
	n.core = c
	// Log domain events as they happen
	for _, eventType := range []event.EventType{
		core.ChallengeCreatedEventType,
		core.ChallengeJoinedEventType,
		core.ProgressSyncedEventType,
		core.RewardWithdrawnEventType,
	} {
		n.eventBus.SubscribeFunc(eventType, n.handleDomainEvent)
	}
	// Start relay API server
	if n.config.relayListenAddress != "" {
		r, err := relay.New(
			relay.RelayConfig{
				ListenAddress: n.config.relayListenAddress,
				OracleKey:     n.config.oracleKey,
			},
			n.core,
			n.config.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to configure relay: %w", err)
		}
		n.relay = r
		//nolint:contextcheck
		if err := n.relay.Start(ctx); err != nil {
			return err
		}
	}

	// Wait for shutdown signal
	<-n.done
	return nil
}

func (n *Node) handleDomainEvent(evt event.Event) {
	n.config.logger.Debug(
		"domain event",
		"component", "node",
		"type", string(evt.Type),
		"timestamp", evt.Timestamp,
	)
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.relay != nil {
		if stopErr := n.relay.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("relay shutdown: %w", stopErr))
		}
	}

	// Phase 2: Flush state and close database
	n.config.logger.Debug("shutdown phase 2: flushing state")

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("database close: %w", closeErr),
			)
		}
	}

	// Phase 3: Cleanup resources
	n.config.logger.Debug("shutdown phase 3: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
