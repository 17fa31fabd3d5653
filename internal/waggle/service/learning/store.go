package learning

import (
	"context"
	"time"
)

// Pattern is one stored learned pattern. The learning store is shared with
// outside collaborators; this package only reads and writes, it does not own
// the schema version.
type Pattern struct {
	ID        string    `json:"id"`
	Strategy  string    `json:"strategy"`
	Domain    string    `json:"domain,omitempty"`
	Quality   float64   `json:"quality"`
	UseCount  int       `json:"use_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MetricSample is one host resource snapshot recorded by the metrics worker.
type MetricSample struct {
	CPUPercent float64   `json:"cpu_percent"`
	MemPercent float64   `json:"mem_percent"`
	LoadAvg    float64   `json:"load_avg"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Store is the local learning-store interface. Save is an upsert keyed by
// pattern ID, so importing the same broadcast twice keeps one copy.
type Store interface {
	// Save inserts or replaces a pattern.
	Save(ctx context.Context, p *Pattern) error
	// Get retrieves a pattern by ID.
	Get(ctx context.Context, id string) (*Pattern, error)
	// Find returns patterns whose strategy or domain matches the query,
	// ranked by quality. Similarity here is substring matching, a stand-in
	// for the collaborator's embedding search.
	Find(ctx context.Context, query string, limit int) ([]*Pattern, error)
	// Touch increments a pattern's use counter.
	Touch(ctx context.Context, id string) error
	// RecordMetric appends a host resource sample.
	RecordMetric(ctx context.Context, m *MetricSample) error
	// Consolidate drops low-quality never-used patterns older than the
	// cutoff and returns how many were removed.
	Consolidate(ctx context.Context, minQuality float64, cutoff time.Time) (int, error)
	// Close releases the underlying handle.
	Close() error
}
