package session

import (
	"testing"

	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/value"
)

func TestSession_New(t *testing.T) {
	sess := New("bot-1", "channel-1")
	if sess.ID == "" {
		t.Error("session ID should not be empty")
	}
	if sess.BotID != "bot-1" || sess.ChannelID != "channel-1" {
		t.Errorf("unexpected identity: %+v", sess)
	}
	if len(sess.Events) != 0 {
		t.Errorf("new session should have no events, got %d", len(sess.Events))
	}
}

func TestSession_RecordSequenceOrdering(t *testing.T) {
	sess := New("bot-1", "channel-1")
	sess.RecordTurnStart("main", "start", false)
	sess.RecordMessage("main", "start", data.Message{ContentType: "text", Content: map[string]any{"text": "hi"}})
	sess.RecordMemory("main", "start", data.MemoryUpdate{Key: "name", Value: value.String("Ada")})
	sess.RecordNext(data.Next{Kind: data.NextEnd})

	if len(sess.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(sess.Events))
	}
	for i, ev := range sess.Events {
		if int(ev.SeqID) != i+1 {
			t.Errorf("event %d has seq %d, want %d", i, ev.SeqID, i+1)
		}
	}
	if sess.Events[0].Type != EventTurnStart {
		t.Errorf("expected turn_start first, got %s", sess.Events[0].Type)
	}
	if sess.Events[1].Type != EventMessage {
		t.Errorf("expected message second, got %s", sess.Events[1].Type)
	}
	if sess.Events[3].NextKind != "End" {
		t.Errorf("expected next kind End, got %s", sess.Events[3].NextKind)
	}
}

func TestSession_HoldResumeRecordedAsDistinctType(t *testing.T) {
	sess := New("bot-1", "channel-1")
	sess.RecordTurnStart("main", "start", true)
	if sess.Events[0].Type != EventHoldResume {
		t.Errorf("expected hold_resume, got %s", sess.Events[0].Type)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	sess := New("bot-1", "channel-1")
	sess.RecordTurnStart("main", "start", false)
	sess.RecordMessage("main", "start", data.Message{ContentType: "text", Content: map[string]any{"text": "hi"}})
	sess.RecordNext(data.Next{Kind: data.NextEnd})

	if err := store.Save(sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(sess.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ID != sess.ID || loaded.BotID != sess.BotID || loaded.ChannelID != sess.ChannelID {
		t.Errorf("identity mismatch after round-trip: %+v", loaded)
	}
	if len(loaded.Events) != len(sess.Events) {
		t.Fatalf("expected %d events, got %d", len(sess.Events), len(loaded.Events))
	}
	for i := range sess.Events {
		if loaded.Events[i].Type != sess.Events[i].Type {
			t.Errorf("event %d type mismatch: got %s want %s", i, loaded.Events[i].Type, sess.Events[i].Type)
		}
	}
}

func TestFileStore_List(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	a := New("bot-1", "channel-a")
	b := New("bot-1", "channel-b")
	if err := store.Save(a); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(b); err != nil {
		t.Fatal(err)
	}

	ids, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(ids))
	}
}
