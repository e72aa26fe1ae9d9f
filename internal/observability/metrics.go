// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coauthor_graph"

// Metrics holds the counters and gauges for one run. Each Metrics owns its
// registry so that tests and concurrent runs do not collide on the default
// registerer. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// RecordsRead counts raw records handed to the normalizer.
	RecordsRead prometheus.Counter

	// RecordsSkipped counts rejected records, labeled by reason.
	RecordsSkipped *prometheus.CounterVec

	// RecordsFiltered counts records removed by filter predicates.
	RecordsFiltered prometheus.Counter

	// AuthorsDropped counts authorships dropped for lacking an id.
	AuthorsDropped prometheus.Counter

	// PartitionsBuilt counts partitions exported successfully.
	PartitionsBuilt prometheus.Counter

	// PartitionsFailed counts partitions whose build or export failed.
	PartitionsFailed prometheus.Counter

	// HTTPRequests counts upstream requests, labeled by source and status code.
	HTTPRequests *prometheus.CounterVec

	// GraphNodes and GraphEdges report the size of the last exported graph.
	GraphNodes prometheus.Gauge
	GraphEdges prometheus.Gauge
}

// NewMetrics creates a Metrics registered on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RecordsRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Raw publication records read.",
		}),
		RecordsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Publication records rejected by the normalizer.",
		}, []string{"reason"}),
		RecordsFiltered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_filtered_total",
			Help:      "Publication records removed by filter predicates.",
		}),
		AuthorsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authors_dropped_total",
			Help:      "Authorships dropped for lacking an author id.",
		}),
		PartitionsBuilt: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partitions_built_total",
			Help:      "Partition graphs built and exported.",
		}),
		PartitionsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partitions_failed_total",
			Help:      "Partition graphs that failed to build or export.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Upstream HTTP requests by source and status code.",
		}, []string{"source", "code"}),
		GraphNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the last exported graph.",
		}),
		GraphEdges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges in the last exported graph.",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRead(n int) {
	if m == nil {
		return
	}
	m.RecordsRead.Add(float64(n))
}

func (m *Metrics) ObserveSkipped(reason string) {
	if m == nil {
		return
	}
	m.RecordsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveFiltered(n int) {
	if m == nil {
		return
	}
	m.RecordsFiltered.Add(float64(n))
}

func (m *Metrics) ObserveAuthorsDropped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.AuthorsDropped.Add(float64(n))
}

// ObservePartition records the outcome of one partition build.
func (m *Metrics) ObservePartition(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.PartitionsFailed.Inc()
		return
	}
	m.PartitionsBuilt.Inc()
}

func (m *Metrics) ObserveRequest(source string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(source, strconv.Itoa(code)).Inc()
}

// ObserveGraph sets the size gauges.
func (m *Metrics) ObserveGraph(nodes, edges int) {
	if m == nil {
		return
	}
	m.GraphNodes.Set(float64(nodes))
	m.GraphEdges.Set(float64(edges))
}

// WriteFile writes all metrics in the text exposition format to path.
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
