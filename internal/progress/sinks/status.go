package sinks

import (
	"context"
	"sync"
	"time"

	"github.com/JakeFAU/recipe-graph-crawler/internal/progress"
)

// RunStatus is a point-in-time view of the current crawl run.
type RunStatus struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Outcomes   map[string]int `json:"outcomes"`
	Pages      int            `json:"pages"`
	CacheHits  int            `json:"cache_hits"`
	LastURL    string         `json:"last_url,omitempty"`
	LastNote   string         `json:"last_note,omitempty"`
}

// StatusSink keeps the latest RunStatus in memory for the status endpoint.
type StatusSink struct {
	mu     sync.RWMutex
	status RunStatus
}

// NewStatusSink returns an empty StatusSink.
func NewStatusSink() *StatusSink {
	return &StatusSink{status: RunStatus{Outcomes: map[string]int{}}}
}

// Consume implements progress.Sink.
func (s *StatusSink) Consume(_ context.Context, batch []progress.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evt := range batch {
		switch evt.Stage {
		case progress.StageRunStart:
			s.status = RunStatus{
				RunID:     evt.RunID.String(),
				StartedAt: evt.TS,
				Outcomes:  map[string]int{},
			}
		case progress.StagePageDone:
			s.status.Outcomes[evt.Outcome]++
			s.status.Pages++
			if evt.FromCache {
				s.status.CacheHits++
			}
			s.status.LastURL = evt.URL
			s.status.LastNote = evt.Note
		case progress.StageRunDone:
			ts := evt.TS
			s.status.FinishedAt = &ts
		}
	}
	return nil
}

// Snapshot returns a copy of the current status.
func (s *StatusSink) Snapshot() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.status
	out.Outcomes = make(map[string]int, len(s.status.Outcomes))
	for k, v := range s.status.Outcomes {
		out.Outcomes[k] = v
	}
	if s.status.FinishedAt != nil {
		ts := *s.status.FinishedAt
		out.FinishedAt = &ts
	}
	return out
}

// Close implements progress.Sink.
func (s *StatusSink) Close(context.Context) error {
	return nil
}
