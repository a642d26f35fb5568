package domain

import "time"

// ShortIDLength is the number of ID characters shown by UIs.
// The full ID is always used as the key.
const ShortIDLength = 8

// HistoryEntry records one applied transition.
type HistoryEntry struct {
	Trigger Trigger   `json:"trigger"`
	From    State     `json:"from"`
	To      State     `json:"to"`
	At      time.Time `json:"at"`
}

// Mission is a single addressable unit of work.
// Values handed out by the repository are snapshots: mutating them has no
// effect on the stored mission.
type Mission struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	State       State          `json:"state"`
	History     []HistoryEntry `json:"history"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewMission creates a mission in the initial Created state with an empty history.
func NewMission(id, title, description string, now time.Time) *Mission {
	return &Mission{
		ID:          id,
		Title:       title,
		Description: description,
		State:       StateCreated,
		History:     []HistoryEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ShortID returns the display form of the ID.
func (m Mission) ShortID() string {
	if len(m.ID) <= ShortIDLength {
		return m.ID
	}
	return m.ID[:ShortIDLength]
}

// Snapshot returns a deep copy of the mission.
func (m *Mission) Snapshot() *Mission {
	if m == nil {
		return nil
	}
	c := *m
	c.History = make([]HistoryEntry, len(m.History))
	copy(c.History, m.History)
	return &c
}

// Record sets the new state and appends the corresponding history entry.
func (m *Mission) Record(trigger Trigger, to State, at time.Time) HistoryEntry {
	entry := HistoryEntry{Trigger: trigger, From: m.State, To: to, At: at}
	m.State = to
	m.History = append(m.History, entry)
	m.UpdatedAt = at
	return entry
}

// Path returns the states visited so far, starting with Created.
func (m Mission) Path() []State {
	path := []State{StateCreated}
	for _, h := range m.History {
		path = append(path, h.To)
	}
	return path
}
