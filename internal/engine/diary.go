package engine

import (
	"sync"
	"time"
)

// DiaryEntry is one line of the campaign chronicle.
type DiaryEntry struct {
	Round     int    `json:"round"`
	Turn      int    `json:"turn"`
	ActorID   string `json:"actorId"`
	ActorName string `json:"actorName"`
	GoalID    string `json:"goalId,omitempty"`
	Action    string `json:"action,omitempty"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Diary accumulates narration in turn order. Safe for concurrent reads
// from the server while the engine appends.
type Diary struct {
	mu      sync.RWMutex
	entries []DiaryEntry
}

func NewDiary() *Diary {
	return &Diary{}
}

func (d *Diary) Record(e DiaryEntry) {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().Unix()
	}
	d.mu.Lock()
	d.entries = append(d.entries, e)
	d.mu.Unlock()
}

// Entries returns a copy of the full chronicle.
func (d *Diary) Entries() []DiaryEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]DiaryEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Tail returns the most recent n entries.
func (d *Diary) Tail(n int) []DiaryEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n > len(d.entries) {
		n = len(d.entries)
	}
	out := make([]DiaryEntry, n)
	copy(out, d.entries[len(d.entries)-n:])
	return out
}

func (d *Diary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}
