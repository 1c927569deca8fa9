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

package database

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics holds counters for write-transaction activity across the
// metadata and blob stores.
type StoreMetrics struct {
	TxnCommits   atomic.Uint64
	TxnRollbacks atomic.Uint64

	// Prometheus metrics (nil until Register is called)
	txnCommitsCounter   prometheus.Counter
	txnRollbacksCounter prometheus.Counter

	// registerOnce ensures Prometheus metrics are only registered once
	registerOnce sync.Once
}

// Register registers Prometheus metrics with the given registry.
// If registry is nil, this is a no-op. This method is idempotent;
// subsequent calls after the first successful registration are no-ops.
func (m *StoreMetrics) Register(registry prometheus.Registerer) {
	if registry == nil {
		return
	}

	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.txnCommitsCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "strider_database_txn_commits_total",
			Help: "Total number of committed write transactions",
		})

		m.txnRollbacksCounter = factory.NewCounter(prometheus.CounterOpts{
			Name: "strider_database_txn_rollbacks_total",
			Help: "Total number of rolled back write transactions",
		})
	})
}

// IncTxnCommit increments the write-transaction commit counter.
func (m *StoreMetrics) IncTxnCommit() {
	m.TxnCommits.Add(1)
	if m.txnCommitsCounter != nil {
		m.txnCommitsCounter.Inc()
	}
}

// IncTxnRollback increments the write-transaction rollback counter.
func (m *StoreMetrics) IncTxnRollback() {
	m.TxnRollbacks.Add(1)
	if m.txnRollbacksCounter != nil {
		m.txnRollbacksCounter.Inc()
	}
}
