// Package feedback stores coder feedback on engine code suggestions. Each
// entry records whether the human coder accepted a suggested code or replaced
// it, which feeds future accuracy tuning.
package feedback

import (
	"context"
	"io"
	"time"
)

// Feedback is one coder decision on one suggested code.
type Feedback struct {
	ID            int64  `json:"id,omitempty"`
	EncounterID   string `json:"encounter_id"`
	PhysicianID   string `json:"physician_id,omitempty"`
	CoderID       string `json:"coder_id"`
	SuggestedCode string `json:"suggested_code"`
	// FinalCode is the code the coder actually billed. Equal to
	// SuggestedCode when the coder agreed.
	FinalCode     string    `json:"final_code"`
	CoderAgreed   bool      `json:"coder_agreed"`
	EngineVersion string    `json:"engine_version,omitempty"`
	Confidence    float64   `json:"confidence"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store is the coder-feedback persistence boundary.
type Store interface {
	// Save stores or updates feedback. Feedback is unique per encounter
	// and suggested code; a second save for the same pair updates it.
	Save(ctx context.Context, fb *Feedback) error

	// Get retrieves feedback for one suggested code on one encounter.
	// It returns nil without error when none exists.
	Get(ctx context.Context, encounterID, suggestedCode string) (*Feedback, error)

	// List returns feedback entries newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON writes every entry as a JSON document.
	ExportJSON(ctx context.Context, w io.Writer) error

	// ImportJSON loads entries from a JSON document, skipping pairs that
	// already exist. It returns the imported and skipped counts.
	ImportJSON(ctx context.Context, r io.Reader) (imported int, skipped int, err error)

	// Close releases the underlying database.
	Close() error
}

// Export is the JSON export envelope.
type Export struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}
