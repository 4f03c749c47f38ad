// Package ledger is an append-only, ordered log of timestamped job transitions.
package ledger

import (
	"encoding/json"
	"time"
)

// SystemLabel tags lifecycle entries that do not belong to a catalog step.
const SystemLabel = "system"

// Entry is a single immutable log line.
type Entry struct {
	Message   string    `json:"message"`
	StepLabel string    `json:"stepLabel"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger holds entries in append order. The zero value is an empty ledger.
// A Ledger is not safe for concurrent use; the owner serializes writes.
type Ledger struct {
	entries []Entry
}

// Append adds an entry to the end of the ledger and returns it.
func (l *Ledger) Append(message, stepLabel string, at time.Time) Entry {
	e := Entry{Message: message, StepLabel: stepLabel, Timestamp: at}
	l.entries = append(l.entries, e)
	return e
}

// Len returns the number of entries.
func (l Ledger) Len() int { return len(l.entries) }

// Last returns the most recent entry.
func (l Ledger) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Entries returns a copy of all entries in order.
func (l Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ForStep returns the entries tagged with the given step label, in order.
func (l Ledger) ForStep(label string) []Entry {
	out := make([]Entry, 0)
	for _, e := range l.entries {
		if e.StepLabel == label {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a read view that later appends to l never show through.
// Entries are immutable, so the backing array is shared with capacity capped
// at the current length.
func (l *Ledger) Clone() Ledger {
	n := len(l.entries)
	return Ledger{entries: l.entries[:n:n]}
}

func (l Ledger) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	l.entries = entries
	return nil
}
