// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var SQLExecutedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "hivegate",
		Subsystem: "postgres_agent",
		Name:      "sql_executed_total",
		Help:      "Total number of SQL statements executed by the Postgres agent.",
	},
)

var AgentDispatchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hivegate",
		Name:      "agent_dispatch_total",
		Help:      "Total number of agent dispatch attempts by agent and outcome.",
	},
	[]string{"agent", "outcome"},
)

var LLMTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "hivegate",
		Subsystem: "llm",
		Name:      "tokens_total",
		Help:      "Total number of LLM tokens consumed by tenant and provider.",
	},
	[]string{"tenant", "provider"},
)

var PoolConnectionsInUse = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "hivegate",
		Subsystem: "postgres_agent",
		Name:      "pool_connections_in_use",
		Help:      "Current number of acquired connections in a tenant's Postgres pool.",
	},
	[]string{"tenant"},
)

var SchemaSnapshotAgeSeconds = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "hivegate",
		Subsystem: "postgres_agent",
		Name:      "schema_snapshot_age_seconds",
		Help:      "Age in seconds of a tenant's cached schema snapshot.",
	},
	[]string{"tenant"},
)

// All returns the gateway-specific metrics for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		SQLExecutedTotal,
		AgentDispatchTotal,
		LLMTokensTotal,
		PoolConnectionsInUse,
		SchemaSnapshotAgeSeconds,
	}
}

// NewRegistry builds a Prometheus registry carrying the Go/process
// collectors plus every gateway-specific collector from All.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, c := range All() {
		reg.MustRegister(c)
	}
	return reg
}
