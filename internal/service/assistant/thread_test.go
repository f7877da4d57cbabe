package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	appmodel "github.com/hearthside/hearthside-ai/internal/model"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "empty", message: "", want: "New conversation"},
		{name: "whitespace only", message: "   \n\t  ", want: "New conversation"},
		{name: "short message kept", message: "How do I sand this?", want: "How do I sand this?"},
		{
			name:    "exactly fifty kept",
			message: strings.Repeat("a", 50),
			want:    strings.Repeat("a", 50),
		},
		{
			name:    "fifty one truncated",
			message: strings.Repeat("a", 51),
			want:    strings.Repeat("a", 47) + "...",
		},
		{
			name:    "multibyte runes not split",
			message: strings.Repeat("木", 60),
			want:    strings.Repeat("木", 47) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveTitle(tt.message)
			if got != tt.want {
				t.Errorf("deriveTitle() = %q, want %q", got, tt.want)
			}
			if len([]rune(got)) > 50 {
				t.Errorf("deriveTitle() produced %d runes, max is 50", len([]rune(got)))
			}
		})
	}
}

func TestResolveThread_ReusesActiveThread(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.threads["t1"] = &appmodel.ChatThread{
		ID:            "t1",
		ProjectID:     "p1",
		Title:         "Old chat",
		LastMessageAt: now.Add(-23 * time.Hour),
	}

	svc := &Service{store: store, locks: newProjectLocks()}

	thread, err := svc.resolveThread(context.Background(), "p1", "", "next question", now)
	if err != nil {
		t.Fatalf("resolveThread() error: %v", err)
	}
	if thread.ID != "t1" {
		t.Errorf("resolveThread() reused %q, want t1", thread.ID)
	}
}

func TestResolveThread_StaleThreadStartsNew(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	store.threads["t1"] = &appmodel.ChatThread{
		ID:            "t1",
		ProjectID:     "p1",
		Title:         "Old chat",
		LastMessageAt: now.Add(-25 * time.Hour),
	}

	svc := &Service{store: store, locks: newProjectLocks()}

	thread, err := svc.resolveThread(context.Background(), "p1", "", "What saw should I buy?", now)
	if err != nil {
		t.Fatalf("resolveThread() error: %v", err)
	}
	if thread.ID == "t1" {
		t.Error("resolveThread() reused a stale thread")
	}
	if thread.Title != "What saw should I buy?" {
		t.Errorf("resolveThread() title = %q, want the message", thread.Title)
	}
	if !thread.StartedAt.Equal(now) || !thread.LastMessageAt.Equal(now) {
		t.Errorf("resolveThread() timestamps = %v / %v, want %v", thread.StartedAt, thread.LastMessageAt, now)
	}
	if _, ok := store.threads[thread.ID]; !ok {
		t.Error("resolveThread() did not persist the new thread")
	}
}

func TestResolveThread_ExplicitID(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	// stale on purpose: an explicit id bypasses the activity window
	store.threads["t1"] = &appmodel.ChatThread{
		ID:            "t1",
		ProjectID:     "p1",
		LastMessageAt: now.Add(-72 * time.Hour),
	}

	svc := &Service{store: store, locks: newProjectLocks()}

	thread, err := svc.resolveThread(context.Background(), "p1", "t1", "hi", now)
	if err != nil {
		t.Fatalf("resolveThread() error: %v", err)
	}
	if thread.ID != "t1" {
		t.Errorf("resolveThread() = %q, want t1", thread.ID)
	}
}

func TestResolveThread_ExplicitIDNotFound(t *testing.T) {
	store := newFakeStore()
	svc := &Service{store: store, locks: newProjectLocks()}

	_, err := svc.resolveThread(context.Background(), "p1", "missing", "hi", time.Now())
	if !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("resolveThread() error = %v, want ErrThreadNotFound", err)
	}
}

func TestResolveThread_ExplicitIDWrongProject(t *testing.T) {
	store := newFakeStore()
	store.threads["t1"] = &appmodel.ChatThread{ID: "t1", ProjectID: "other"}
	svc := &Service{store: store, locks: newProjectLocks()}

	_, err := svc.resolveThread(context.Background(), "p1", "t1", "hi", time.Now())
	if !errors.Is(err, ErrThreadNotFound) {
		t.Errorf("resolveThread() error = %v, want ErrThreadNotFound", err)
	}
}

func TestProjectLocks_SerializesPerProject(t *testing.T) {
	locks := newProjectLocks()

	unlock := locks.Lock("p1")

	acquired := make(chan struct{})
	go func() {
		u := locks.Lock("p1")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock(p1) acquired while first was held")
	case <-time.After(50 * time.Millisecond):
	}

	// a different project must not block
	done := make(chan struct{})
	go func() {
		u := locks.Lock("p2")
		u()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Lock(p2) blocked on the p1 lock")
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock(p1) never acquired after unlock")
	}
}
