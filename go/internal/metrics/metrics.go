// Package metrics provides Prometheus metrics for the Song Rival engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "songrival"

// Settlement outcome label values.
const (
	OutcomeWin  = "win"
	OutcomeDraw = "draw"
)

// Manager holds the engine's Prometheus collectors.
type Manager struct {
	matchesStarted     prometheus.Counter
	activeSessions     prometheus.Gauge
	waitingPlayers     prometheus.Gauge
	settlements        *prometheus.CounterVec
	settlementFailures prometheus.Counter
	watchdogTimeouts   prometheus.Counter
}

// NewManager registers the engine collectors on the given registerer.
func NewManager(reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)
	return &Manager{
		matchesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_started_total",
			Help:      "Matches created by the matchmaking pool.",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently being played.",
		}),
		waitingPlayers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "waiting_players",
			Help:      "Players queued across all stake tiers.",
		}),
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settled games by outcome.",
		}, []string{"outcome"}),
		settlementFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_failures_total",
			Help:      "Settlement passes whose ledger transfer failed.",
		}),
		watchdogTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_timeouts_total",
			Help:      "Sessions resolved by the timeout watchdog.",
		}),
	}
}

func (m *Manager) RecordMatchStarted()         { m.matchesStarted.Inc() }
func (m *Manager) SetActiveSessions(n int)     { m.activeSessions.Set(float64(n)) }
func (m *Manager) SetWaitingPlayers(n int)     { m.waitingPlayers.Set(float64(n)) }
func (m *Manager) RecordSettlement(out string) { m.settlements.WithLabelValues(out).Inc() }
func (m *Manager) RecordSettlementFailure()    { m.settlementFailures.Inc() }
func (m *Manager) RecordWatchdogTimeout()      { m.watchdogTimeouts.Inc() }
