package history

import (
	"sync"
	"time"

	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// #region round
// Round is one realized utterance: world object id → the step that
// realized it.
type Round struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Steps     map[string]plan.Step `json:"steps"`
}

// #endregion round

// #region sink
// Sink persists history changes. Store implements it.
type Sink interface {
	SaveRound(r Round, types map[string]string) error
	DeleteRound(id string) error
	Clear() error
}

// #endregion sink

// #region history
// History is the output history shared by consecutive planning runs.
// It is safe for concurrent use; writers are serialized.
type History struct {
	mu     sync.RWMutex
	rounds []Round
	// last is the index of the most recent round in rounds, -1 after a clear.
	last  int
	types map[string]string
	sink  Sink
}

// #endregion history
