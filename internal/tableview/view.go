package tableview

import "sync"

// rowState tracks the visibility of one record's two detail rows.
// Both start hidden.
type rowState struct {
	detailsShown bool
	contentShown bool
}

// View holds the per-record visibility state for the message table.
// Safe for concurrent use by HTTP handlers.
type View struct {
	mu     sync.RWMutex
	states map[int64]*rowState
}

// NewView creates an empty View
func NewView() *View {
	return &View{
		states: make(map[int64]*rowState),
	}
}

// Register records a row identifier with both detail rows hidden.
// Registering an already-known identifier preserves its current state.
func (v *View) Register(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.states[id]; !ok {
		v.states[id] = &rowState{}
	}
}

// RegisterRows registers every row in the slice
func (v *View) RegisterRows(rows []Row) {
	for _, r := range rows {
		v.Register(r.ID)
	}
}

// ToggleDetails flips the details row between hidden and shown and
// reports the new state. Unknown identifiers are silent no-ops.
func (v *View) ToggleDetails(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.states[id]
	if !ok {
		return false
	}
	s.detailsShown = !s.detailsShown
	return s.detailsShown
}

// ToggleContent flips the full-content row between hidden and shown and
// reports the new state. Unknown identifiers are silent no-ops.
func (v *View) ToggleContent(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.states[id]
	if !ok {
		return false
	}
	s.contentShown = !s.contentShown
	return s.contentShown
}

// DetailsShown reports whether the record's details row is visible
func (v *View) DetailsShown(id int64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s, ok := v.states[id]
	return ok && s.detailsShown
}

// ContentShown reports whether the record's full-content row is visible
func (v *View) ContentShown(id int64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s, ok := v.states[id]
	return ok && s.contentShown
}

// Known reports whether the identifier has been registered
func (v *View) Known(id int64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	_, ok := v.states[id]
	return ok
}
