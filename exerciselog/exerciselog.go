// Package exerciselog holds the per-day workout entries shown alongside
// the profile. It is a plain in-memory model; persistence is up to the
// caller.
package exerciselog

import (
	"sort"
	"sync"
	"time"
)

// DateFormat is the key layout for log days.
const DateFormat = "2006-01-02"

// Entry is one exercise line for a day.
type Entry struct {
	Exercise string `json:"exercise"`
	Reps     int    `json:"reps"`
	Sets     int    `json:"sets"`
}

// Log stores entries grouped by day. Safe for concurrent use.
type Log struct {
	mu   sync.RWMutex
	days map[string][]Entry
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{
		days: make(map[string][]Entry),
	}
}

// Seeded returns a Log pre-filled with the starter workout.
func Seeded() *Log {
	l := NewLog()
	day := time.Date(2003, time.February, 24, 0, 0, 0, 0, time.UTC)
	l.Add(day, Entry{Exercise: "Push Ups", Reps: 10, Sets: 3})
	l.Add(day, Entry{Exercise: "Sit Ups", Reps: 15, Sets: 3})
	l.Add(day, Entry{Exercise: "Pull Ups", Reps: 5, Sets: 3})
	l.Add(day, Entry{Exercise: "Squats", Reps: 20, Sets: 3})
	return l
}

// Add appends entry to the given day.
func (l *Log) Add(day time.Time, entry Entry) {
	key := day.Format(DateFormat)
	l.mu.Lock()
	l.days[key] = append(l.days[key], entry)
	l.mu.Unlock()
}

// Day returns a copy of the entries recorded for day, oldest first.
func (l *Log) Day(day time.Time) []Entry {
	key := day.Format(DateFormat)
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := l.days[key]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Days returns every day with at least one entry, ascending.
func (l *Log) Days() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.days))
	for key := range l.days {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TotalReps sums reps*sets across every entry of day.
func (l *Log) TotalReps(day time.Time) int {
	total := 0
	for _, entry := range l.Day(day) {
		total += entry.Reps * entry.Sets
	}
	return total
}
