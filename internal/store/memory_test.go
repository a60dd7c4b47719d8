package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/ojisan/apps/go-server/internal/game"
)

func newSession(id string) *Session {
	return &Session{ID: id, Mode: ModeRandom, Engine: game.New(game.Options{})}
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}

	s := newSession("s1")
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != s {
		t.Fatal("get returned a different session")
	}
	if st.Len() != 1 {
		t.Fatalf("len = %d, want 1", st.Len())
	}

	if err := st.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestSweepEvictsOnlyIdle(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := base
	st := &memory{sessions: make(map[string]*Session), now: func() time.Time { return clock }}

	_ = st.Save(ctx, newSession("old"))
	_ = st.Save(ctx, newSession("fresh"))

	clock = base.Add(20 * time.Minute)
	if _, err := st.Get(ctx, "fresh"); err != nil {
		t.Fatalf("get fresh: %v", err)
	}

	n := st.Sweep(base.Add(40*time.Minute), 30*time.Minute)
	if n != 1 {
		t.Fatalf("evicted = %d, want 1", n)
	}
	if _, err := st.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old still present: err = %v", err)
	}
	if _, err := st.Get(ctx, "fresh"); err != nil {
		t.Fatalf("fresh evicted: %v", err)
	}
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	clock := base
	st := &memory{sessions: make(map[string]*Session), now: func() time.Time { return clock }}

	_ = st.Save(ctx, newSession("live"))

	clock = base.Add(25 * time.Minute)
	if err := st.Touch(ctx, "live"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if n := st.Sweep(base.Add(40*time.Minute), 30*time.Minute); n != 0 {
		t.Fatalf("evicted = %d, want 0", n)
	}
	if err := st.Touch(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("touch missing: err = %v, want ErrNotFound", err)
	}
}

func TestRunJanitorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := NewMemoryStore()
	_ = st.Save(ctx, &Session{ID: "s", LastSeen: time.Now().Add(-time.Hour)})

	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, st, 5*time.Millisecond, time.Minute)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for st.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("janitor never swept")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
