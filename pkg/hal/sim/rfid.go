package sim

import (
	"errors"
	"sync"

	"github.com/robotalks/tagpad/pkg/hal"
)

var errNotSelected = errors.New("tag not in field")

// Rfid is a simulated reader. A tag put in the field answers presence
// detection once; after it is selected it stays silent until presented
// again, as an activated card does.
type Rfid struct {
	mu      sync.Mutex
	field   []hal.UID
	polls   int
	selects int
}

// Present puts a tag into the field.
func (r *Rfid) Present(uid hal.UID) {
	r.mu.Lock()
	r.field = append(r.field, uid)
	r.mu.Unlock()
}

// DetectPresence implements hal.RfidReader.
func (r *Rfid) DetectPresence() (hal.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls++
	if len(r.field) == 0 {
		return hal.Token{}, hal.ErrNoTag
	}
	return hal.Token{0x04, 0x00}, nil
}

// Select implements hal.RfidReader.
func (r *Rfid) Select(hal.Token) (hal.UID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.field) == 0 {
		return hal.UID{}, errNotSelected
	}
	uid := r.field[0]
	r.field = r.field[1:]
	r.selects++
	return uid, nil
}

// Stats returns the number of presence polls and selections.
func (r *Rfid) Stats() (polls, selects int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.polls, r.selects
}
