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

// Package core implements the escrow state machine that owns challenge and
// participant records. Every operation runs inside a single database
// transaction: all preconditions are checked before any mutation, and any
// failure rolls the whole operation back. The host store serializes
// conflicting writers, so the state machine itself holds no locks.
package core

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/strider/database"
	"github.com/blinklabs-io/strider/event"
	"github.com/blinklabs-io/strider/oracle"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MaxGroupSize caps the explicit allow-list on a private challenge
	MaxGroupSize = 32
	// MaxNameLength caps a challenge name in bytes
	MaxNameLength = 64
)

// Config holds the state machine dependencies
type Config struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	Database     *database.Database
	Oracle       *oracle.Authorizer
	PromRegistry prometheus.Registerer
	// TimeNow overrides the wall clock, used for testing
	TimeNow func() time.Time
}

// Core is the escrow state machine
type Core struct {
	logger   *slog.Logger
	eventBus *event.EventBus
	db       *database.Database
	oracle   *oracle.Authorizer
	metrics  *coreMetrics
	timeNow  func() time.Time
}

func New(cfg Config) (*Core, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	if cfg.Oracle == nil {
		return nil, errors.New("no oracle authorizer provided")
	}
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	timeNow := cfg.TimeNow
	if timeNow == nil {
		timeNow = time.Now
	}
	c := &Core{
		logger:   logger.With("component", "core"),
		eventBus: cfg.EventBus,
		db:       cfg.Database,
		oracle:   cfg.Oracle,
		timeNow:  timeNow,
	}
	if cfg.PromRegistry != nil {
		c.metrics = &coreMetrics{}
		c.metrics.init(cfg.PromRegistry)
	}
	return c, nil
}

// Oracle returns the configured oracle authorizer
func (c *Core) Oracle() *oracle.Authorizer {
	return c.oracle
}

// Database returns the underlying record store
func (c *Core) Database() *database.Database {
	return c.db
}

func (c *Core) publish(eventType event.EventType, data any) {
	if c.eventBus == nil {
		return
	}
	c.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
