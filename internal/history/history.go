package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// New returns an empty in-memory history.
func New() *History {
	return &History{last: -1, types: make(map[string]string)}
}

// WithSink attaches persistence to h and returns it.
func (h *History) WithSink(s Sink) *History {
	h.mu.Lock()
	h.sink = s
	h.mu.Unlock()
	return h
}

// #region record

// Record appends a round made of the steps that reference world objects and
// remembers each referenced object's type.
func (h *History) Record(steps []plan.Step) (Round, error) {
	r := Round{ID: uuid.New().String(), CreatedAt: time.Now().UTC(), Steps: make(map[string]plan.Step)}
	added := make(map[string]string)
	for _, s := range steps {
		if s.ObjectID == "" {
			continue
		}
		r.Steps[s.ObjectID] = s
		if s.ObjectType != "" {
			added[s.ObjectID] = s.ObjectType
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sink != nil {
		if err := h.sink.SaveRound(r, added); err != nil {
			return Round{}, fmt.Errorf("history: save round: %w", err)
		}
	}
	for id, typ := range added {
		h.types[id] = typ
	}
	h.rounds = append(h.rounds, r)
	h.last = len(h.rounds) - 1
	return r, nil
}

// #endregion record

// #region read

// Last returns the most recent round, or an empty round after ClearLast or
// ClearAll.
func (h *History) Last() Round {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last < 0 {
		return Round{Steps: map[string]plan.Step{}}
	}
	return h.rounds[h.last]
}

// Rounds returns every recorded round, oldest first.
func (h *History) Rounds() []Round {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Round, len(h.rounds))
	copy(out, h.rounds)
	return out
}

// TypeOf returns the type recorded for a world object id.
func (h *History) TypeOf(id string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.types[id]
	return t, ok
}

// Len is the number of rounds.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rounds)
}

// #endregion read

// #region clear

// ClearLast drops the most recent round. Afterwards Last is empty until the
// next Record; a second ClearLast is a no-op.
func (h *History) ClearLast() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last < 0 {
		return nil
	}
	if h.sink != nil {
		if err := h.sink.DeleteRound(h.rounds[h.last].ID); err != nil {
			return fmt.Errorf("history: delete round: %w", err)
		}
	}
	h.rounds = append(h.rounds[:h.last], h.rounds[h.last+1:]...)
	h.last = -1
	return nil
}

// ClearAll forgets every round and every recorded type.
func (h *History) ClearAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sink != nil {
		if err := h.sink.Clear(); err != nil {
			return fmt.Errorf("history: clear: %w", err)
		}
	}
	h.rounds = nil
	h.last = -1
	h.types = make(map[string]string)
	return nil
}

// #endregion clear
