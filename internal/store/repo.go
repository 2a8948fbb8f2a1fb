package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/worksheetgen/internal/workbook"
	"github.com/abhisek/worksheetgen/internal/worksheet"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// TierText is the raw LLM output for one difficulty tier.
type TierText struct {
	Tier string
	Raw  string
}

// Generation is one worksheet generation request and its per-tier output.
type Generation struct {
	ID         string
	Sequence   int64
	CreatedAt  time.Time
	Type       string
	Language   string
	TotalMarks int
	Topic      string
	Model      string

	// Tiers keep the order they were generated in.
	Tiers []TierText
}

// Tier returns the raw text stored for tier.
func (g *Generation) Tier(tier string) (string, bool) {
	for _, t := range g.Tiers {
		if t.Tier == tier {
			return t.Raw, true
		}
	}
	return "", false
}

// Workbook parses every stored tier. The first stored tier is active.
func (g *Generation) Workbook() (*workbook.Workbook, error) {
	t, err := worksheet.ParseQuestionType(g.Type)
	if err != nil {
		return nil, fmt.Errorf("generation %s: %w", g.ID, err)
	}
	wb := workbook.New(t)
	for _, tt := range g.Tiers {
		wb.SetRaw(tt.Tier, tt.Raw)
	}
	return wb, nil
}

// GenerationRepo persists worksheet generations.
type GenerationRepo interface {
	// Save stores a generation, assigning ID, Sequence and CreatedAt
	// when they are unset.
	Save(ctx context.Context, g *Generation) error

	// Get returns the generation with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Generation, error)

	// Latest returns the most recent generation or ErrNotFound.
	Latest(ctx context.Context) (*Generation, error)

	// List returns generations newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Generation, error)

	// Prune deletes all but the keep most recent generations.
	Prune(ctx context.Context, keep int) error
}
