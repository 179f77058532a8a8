package chat

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSessionAppendsInOrder(t *testing.T) {
	s := NewSession(0)
	s.AddUserMessage("hello")
	s.AddModelMessage("hi there")

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Parts[0].Text != "hello" {
		t.Errorf("unexpected first message: %q", history[0].Parts[0].Text)
	}
	if string(history[1].Role) != "model" {
		t.Errorf("expected model role, got %q", history[1].Role)
	}
}

func TestSessionEvictsOldestFirst(t *testing.T) {
	// Each message is 400 chars, roughly 100 tokens. A 250 token limit
	// keeps the two most recent messages.
	s := NewSession(250)
	s.AddUserMessage("first " + strings.Repeat("a", 394))
	s.AddUserMessage("second " + strings.Repeat("b", 393))
	s.AddUserMessage("third " + strings.Repeat("c", 394))

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 retained messages, got %d", len(history))
	}
	if !strings.HasPrefix(history[0].Parts[0].Text, "second") {
		t.Errorf("expected oldest message evicted, head is %q", history[0].Parts[0].Text[:10])
	}
	if s.TokenCount() > 250 {
		t.Errorf("token count %d exceeds limit", s.TokenCount())
	}
}

func TestSessionKeepsNewestOverLimit(t *testing.T) {
	s := NewSession(10)
	s.AddUserMessage(strings.Repeat("x", 1000))

	if s.MessageCount() != 1 {
		t.Fatalf("newest message must survive eviction, got %d messages", s.MessageCount())
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTranscriptStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	s := NewSession(0)
	s.AddUserMessage("what should I work on")
	s.AddModelMessage("pick one challenge")

	if err := store.Save(s); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := filepath.Glob(filepath.Join(dir, "transcripts", "*.json")); err != nil {
		t.Fatal(err)
	}

	file, err := store.Load(s.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(file.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(file.Entries))
	}
	if file.Entries[1].Content != "pick one challenge" {
		t.Errorf("unexpected entry: %q", file.Entries[1].Content)
	}

	restored := RestoreHistory(file, 0)
	if restored.MessageCount() != 2 {
		t.Errorf("restored %d messages", restored.MessageCount())
	}
}
