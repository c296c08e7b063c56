package exerciselog

import (
	"testing"
	"time"
)

func TestSeededStarterWorkout(t *testing.T) {
	log := Seeded()
	day := time.Date(2003, time.February, 24, 0, 0, 0, 0, time.UTC)

	entries := log.Day(day)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Exercise != "Push Ups" || entries[0].Reps != 10 || entries[0].Sets != 3 {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if got := log.TotalReps(day); got != (10+15+5+20)*3 {
		t.Fatalf("unexpected total reps %d", got)
	}
}

func TestAddAndDays(t *testing.T) {
	log := NewLog()
	d1 := time.Date(2026, time.August, 29, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)

	log.Add(d2, Entry{Exercise: "Squats", Reps: 20, Sets: 3})
	log.Add(d1, Entry{Exercise: "Push Ups", Reps: 10, Sets: 3})

	days := log.Days()
	if len(days) != 2 || days[0] != "2026-08-29" || days[1] != "2026-08-30" {
		t.Fatalf("unexpected days %v", days)
	}

	// Day copies are detached from the log.
	entries := log.Day(d1)
	entries[0].Reps = 999
	if log.Day(d1)[0].Reps != 10 {
		t.Fatal("mutating the returned slice leaked into the log")
	}
}
