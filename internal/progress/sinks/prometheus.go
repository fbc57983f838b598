package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JakeFAU/recipe-graph-crawler/internal/progress"
)

// PrometheusSink exports crawl progress as Prometheus collectors.
type PrometheusSink struct {
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runRuntime    prometheus.Histogram

	pages         *prometheus.CounterVec
	fetchRequests *prometheus.CounterVec
	fetchBytes    *prometheus.CounterVec
	pageDuration  *prometheus.HistogramVec
	graphWrites   *prometheus.CounterVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipes_runs_started_total",
			Help: "Total crawl runs that have started.",
		}),
		runsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipes_runs_completed_total",
			Help: "Total crawl runs that have finished.",
		}),
		runRuntime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipes_run_runtime_seconds",
			Help:    "Wall time per completed run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipes_pages_total",
			Help: "Pages processed partitioned by outcome.",
		}, []string{"outcome"}),
		fetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipes_fetch_requests_total",
			Help: "Fetch completions partitioned by site, status class and source.",
		}, []string{"site", "status_class", "source"}),
		fetchBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipes_fetch_bytes_total",
			Help: "Response bytes per site.",
		}, []string{"site"}),
		pageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipes_page_duration_seconds",
			Help:    "Per page processing time partitioned by outcome.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"outcome"}),
		graphWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipes_graph_writes_total",
			Help: "Graph writes partitioned by kind (node or relationship).",
		}, []string{"kind"}),
	}
	for _, collector := range []prometheus.Collector{
		s.runsStarted,
		s.runsCompleted,
		s.runRuntime,
		s.pages,
		s.fetchRequests,
		s.fetchBytes,
		s.pageDuration,
		s.graphWrites,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageRunStart:
			s.runsStarted.Inc()
		case progress.StageRunDone:
			s.runsCompleted.Inc()
			if evt.Dur > 0 {
				s.runRuntime.Observe(evt.Dur.Seconds())
			}
		case progress.StagePageDone:
			s.handlePage(evt)
		}
	}
	return nil
}

func (s *PrometheusSink) handlePage(evt progress.Event) {
	s.pages.WithLabelValues(evt.Outcome).Inc()
	if evt.Dur > 0 {
		s.pageDuration.WithLabelValues(evt.Outcome).Observe(evt.Dur.Seconds())
	}
	if evt.Nodes > 0 {
		s.graphWrites.WithLabelValues("node").Add(float64(evt.Nodes))
	}
	if evt.Relationships > 0 {
		s.graphWrites.WithLabelValues("relationship").Add(float64(evt.Relationships))
	}
	if evt.StatusClass == "" {
		return
	}
	site := evt.Site
	if site == "" {
		site = "unknown"
	}
	source := "network"
	if evt.FromCache {
		source = "cache"
	}
	s.fetchRequests.WithLabelValues(site, string(evt.StatusClass), source).Inc()
	if evt.Bytes > 0 && !evt.FromCache {
		s.fetchBytes.WithLabelValues(site).Add(float64(evt.Bytes))
	}
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
