// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics instruments the engine and query layers with
// Prometheus collectors: a small struct of pre-registered collectors
// constructed once and passed into the components that update them,
// rather than referenced through a package-level global.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the full set of collectors exposed by one orchestrator
// instance. A nil *Metrics is valid everywhere it is consulted: every
// method is a no-op on a nil receiver, so components that are not given
// a Metrics (tests, one-shot CLI tools that don't care) pay nothing.
type Metrics struct {
	scanDuration    prometheus.Histogram
	filesIndexed    prometheus.Counter
	epochCommit     prometheus.Histogram
	stubCacheHits   prometheus.Counter
	stubCacheMisses prometheus.Counter
	queryDuration   *prometheus.HistogramVec
}

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// New builds a Metrics instance and registers its collectors against reg.
// Pass prometheus.NewRegistry() for an isolated, unexposed instance (the
// default for CLI one-shot commands), or prometheus.DefaultRegisterer
// when a component of the host process serves /metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "naviscope_scan_duration_seconds",
			Help:    "Duration of a full or incremental workspace scan and resolve.",
			Buckets: latencyBuckets,
		}),
		filesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "naviscope_files_indexed_total",
			Help: "Source files that contributed graph ops to a committed epoch.",
		}),
		epochCommit: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "naviscope_epoch_commit_duration_seconds",
			Help:    "Duration of applying resolved ops and swapping in the new snapshot.",
			Buckets: latencyBuckets,
		}),
		stubCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "naviscope_stub_cache_hits_total",
			Help: "Stub requests served from the fingerprint-keyed generator cache.",
		}),
		stubCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "naviscope_stub_cache_misses_total",
			Help: "Stub requests that invoked a generator because no cached payload matched.",
		}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "naviscope_query_duration_seconds",
			Help:    "Facade query duration, labeled by operation kind (ls, cat, find, deps, ...).",
			Buckets: latencyBuckets,
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.scanDuration,
		m.filesIndexed,
		m.epochCommit,
		m.stubCacheHits,
		m.stubCacheMisses,
		m.queryDuration,
	)
	return m
}

// ObserveScan records the duration of one Rebuild/Refresh/UpdateFiles
// scan-and-resolve pass and the number of files it indexed.
func (m *Metrics) ObserveScan(seconds float64, filesIndexed int) {
	if m == nil {
		return
	}
	m.scanDuration.Observe(seconds)
	m.filesIndexed.Add(float64(filesIndexed))
}

// ObserveEpochCommit records the duration of applying ops and publishing
// the resulting snapshot.
func (m *Metrics) ObserveEpochCommit(seconds float64) {
	if m == nil {
		return
	}
	m.epochCommit.Observe(seconds)
}

// StubCacheHit increments the stub-cache hit counter.
func (m *Metrics) StubCacheHit() {
	if m == nil {
		return
	}
	m.stubCacheHits.Inc()
}

// StubCacheMiss increments the stub-cache miss counter.
func (m *Metrics) StubCacheMiss() {
	if m == nil {
		return
	}
	m.stubCacheMisses.Inc()
}

// ObserveQuery records the duration of one facade operation, labeled by
// kind ("ls", "cat", "find", "deps", "resolve_path", "find_references",
// "call_hierarchy", "completion").
func (m *Metrics) ObserveQuery(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(kind).Observe(seconds)
}
