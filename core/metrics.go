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

package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type coreMetrics struct {
	challengesCreated prometheus.Counter
	joinsTotal        prometheus.Counter
	syncsTotal        prometheus.Counter
	withdrawalsTotal  prometheus.Counter
	opFailuresTotal   *prometheus.CounterVec
}

func (m *coreMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.challengesCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "strider_core_challenges_created_total",
		Help: "total challenges created",
	})
	m.joinsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "strider_core_joins_total",
		Help: "total successful challenge joins",
	})
	m.syncsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "strider_core_syncs_total",
		Help: "total accepted progress submissions",
	})
	m.withdrawalsTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "strider_core_withdrawals_total",
		Help: "total successful reward withdrawals",
	})
	m.opFailuresTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strider_core_op_failures_total",
			Help: "total rejected operations per operation name",
		},
		[]string{"op"},
	)
}

func (m *coreMetrics) opFailure(op string) {
	if m == nil || m.opFailuresTotal == nil {
		return
	}
	m.opFailuresTotal.WithLabelValues(op).Inc()
}
