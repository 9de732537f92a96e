package maintenance

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLogEvictsOldestPastCapacity(t *testing.T) {
	t.Parallel()

	l := NewLog()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		l.Record(Entry{Time: base.Add(time.Duration(i) * time.Second), Command: fmt.Sprintf("cmd-%d", i)})
	}

	got := l.List()
	if len(got) != LogCapacity {
		t.Fatalf("expected %d entries, got %d", LogCapacity, len(got))
	}
	// новые в голове: cmd-29 ... cmd-5
	for i, e := range got {
		if want := fmt.Sprintf("cmd-%d", 29-i); e.Command != want {
			t.Fatalf("entry %d = %q, want %q", i, e.Command, want)
		}
	}
}

func TestLogListReturnsCopy(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.Record(Entry{Command: "one"})
	got := l.List()
	got[0].Command = "mutated"
	if l.List()[0].Command != "one" {
		t.Fatal("List must return a copy")
	}
}

func TestLogConcurrentRecord(t *testing.T) {
	t.Parallel()

	l := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Record(Entry{Command: fmt.Sprintf("cmd-%d", i)})
		}(i)
	}
	wg.Wait()
	if got := len(l.List()); got != LogCapacity {
		t.Fatalf("expected %d entries, got %d", LogCapacity, got)
	}
}
