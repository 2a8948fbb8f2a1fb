package compose

import (
	"time"

	"github.com/abhisek/worksheetgen/internal/store"
)

// generationDoneMsg is sent when the worksheet set has been generated and
// saved, or when either step failed.
type generationDoneMsg struct {
	Generation *store.Generation
	Err        error
}

// waitTickMsg is sent at short intervals to advance the wait indicator.
type waitTickMsg time.Time
