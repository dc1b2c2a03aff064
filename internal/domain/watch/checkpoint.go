package watch

import (
	"time"

	"github.com/shopspring/decimal"
)

// IDSet is a set of entity ids. It serializes as a JSON object so the
// checkpoint round-trips through any key/value store.
type IDSet map[string]bool

// NewIDSet builds a set from a list of ids
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Has returns true if the id is in the set
func (s IDSet) Has(id string) bool {
	return s[id]
}

// Checkpoint is the per-job comparison baseline persisted between polls.
// Exactly one checkpoint exists per polling job; it is read, diffed against,
// and fully rewritten once per cycle. A nil LastPollTime marks a job that has
// never completed a poll, which makes the next cycle a bootstrap cycle.
type Checkpoint struct {
	// LastPollTime is the wall-clock time of the previous successful poll
	LastPollTime *time.Time `json:"lastPollTime,omitempty"`
	// KnownIDs is the set of entity ids observed on the previous poll
	KnownIDs IDSet `json:"knownIds,omitempty"`
	// StatusByID maps entity id to its last observed status
	StatusByID map[string]string `json:"statusById,omitempty"`
	// QuantityByID maps product id to its last observed on-hand quantity
	QuantityByID map[string]decimal.Decimal `json:"quantityById,omitempty"`
}

// IsBootstrap returns true if no poll has completed for this job yet
func (c Checkpoint) IsBootstrap() bool {
	return c.LastPollTime == nil
}

// Clone returns a deep copy. Watchers operate on copies so a failed cycle
// can never leave a partially mutated checkpoint behind.
func (c Checkpoint) Clone() Checkpoint {
	out := Checkpoint{}
	if c.LastPollTime != nil {
		t := *c.LastPollTime
		out.LastPollTime = &t
	}
	if c.KnownIDs != nil {
		out.KnownIDs = make(IDSet, len(c.KnownIDs))
		for id, v := range c.KnownIDs {
			out.KnownIDs[id] = v
		}
	}
	if c.StatusByID != nil {
		out.StatusByID = make(map[string]string, len(c.StatusByID))
		for id, st := range c.StatusByID {
			out.StatusByID[id] = st
		}
	}
	if c.QuantityByID != nil {
		out.QuantityByID = make(map[string]decimal.Decimal, len(c.QuantityByID))
		for id, q := range c.QuantityByID {
			out.QuantityByID[id] = q
		}
	}
	return out
}
