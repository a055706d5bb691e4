// Package session provides append-only turn logging and persistence.
// A Session is one (bot_id, channel_id) conversation; its Events are
// the forensic record of every turn run against it (spec §6's
// side-channel notifications, one Event per Message/Memory/Hold/Next/
// Error). Adapted from internal/session/session.go's Session+Event+
// FileStore shape: the LLM-conversation/tool-call/supervision event
// types are replaced by the Language's own turn vocabulary, and the
// four-phase/security/sub-agent forensic metadata is dropped along
// with them.
package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/csml-lang/csml-go/internal/data"
	"github.com/google/uuid"
)

// Event types for the turn log.
const (
	EventTurnStart  = "turn_start"
	EventMessage    = "message"
	EventMemory     = "memory"
	EventHoldSet    = "hold_set"
	EventHoldResume = "hold_resume"
	EventNext       = "next"
	EventError      = "error"
	EventTurnEnd    = "turn_end"
)

// Session is one bot/channel conversation: an ordered, append-only
// event log plus the identity it belongs to.
type Session struct {
	ID        string    `json:"id"`
	BotID     string    `json:"bot_id"`
	ChannelID string    `json:"channel_id"`
	Events    []Event   `json:"events"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	seqCounter uint64
	mu         sync.Mutex
}

// Event is a single entry in the turn log.
type Event struct {
	SeqID     uint64    `json:"seq"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	Flow string `json:"flow,omitempty"`
	Step string `json:"step,omitempty"`

	// Message/Memory/Hold/Next/Error payloads; only the field(s)
	// matching Type are populated.
	ContentType string `json:"content_type,omitempty"`
	Content     any    `json:"content,omitempty"`
	MemoryKey   string `json:"memory_key,omitempty"`
	MemoryValue any    `json:"memory_value,omitempty"`
	Forget      bool   `json:"forget,omitempty"`
	HoldIndex   int    `json:"hold_index,omitempty"`
	NextKind    string `json:"next_kind,omitempty"`
	Error       string `json:"error,omitempty"`
}

// New creates an empty in-memory Session for (botID, channelID).
func New(botID, channelID string) *Session {
	now := time.Now()
	return &Session{
		ID:        generateID(),
		BotID:     botID,
		ChannelID: channelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) nextSeqID() uint64 {
	return atomic.AddUint64(&s.seqCounter, 1)
}

// AddEvent appends an event with automatic sequencing and timestamping.
func (s *Session) AddEvent(event Event) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.SeqID = s.nextSeqID()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.Events = append(s.Events, event)
	s.UpdatedAt = time.Now()
	return event.SeqID
}

// RecordTurnStart appends a turn_start event, or a hold_resume event
// when resuming is true.
func (s *Session) RecordTurnStart(flow, step string, resuming bool) {
	typ := EventTurnStart
	if resuming {
		typ = EventHoldResume
	}
	s.AddEvent(Event{Type: typ, Flow: flow, Step: step})
}

// RecordMessage appends a message event.
func (s *Session) RecordMessage(flow, step string, m data.Message) {
	s.AddEvent(Event{Type: EventMessage, Flow: flow, Step: step, ContentType: m.ContentType, Content: m.Content})
}

// RecordMemory appends a memory event.
func (s *Session) RecordMemory(flow, step string, u data.MemoryUpdate) {
	ev := Event{Type: EventMemory, Flow: flow, Step: step, MemoryKey: u.Key, Forget: u.Forget}
	if u.Value != nil {
		ev.MemoryValue = u.Value
	}
	s.AddEvent(ev)
}

// RecordHold appends a hold_set event.
func (s *Session) RecordHold(flow, step string, h data.Hold) {
	s.AddEvent(Event{Type: EventHoldSet, Flow: flow, Step: step, HoldIndex: h.InstructionIndex})
}

// RecordNext appends a next event describing the turn's final directive.
func (s *Session) RecordNext(n data.Next) {
	kinds := [...]string{"Continue", "Goto", "Hold", "End", "Error"}
	kind := "Continue"
	if int(n.Kind) < len(kinds) {
		kind = kinds[n.Kind]
	}
	s.AddEvent(Event{Type: EventNext, Flow: n.Flow, Step: n.Step, NextKind: kind})
}

// RecordError appends an error event.
func (s *Session) RecordError(flow, step, msg string) {
	s.AddEvent(Event{Type: EventError, Flow: flow, Step: step, Error: msg})
}

func generateID() string {
	return uuid.New().String()
}

// Store is the interface for session persistence.
type Store interface {
	Save(sess *Session) error
	Load(id string) (*Session, error)
}

// JSONLRecord wraps one line of a session's JSONL file.
type JSONLRecord struct {
	RecordType string `json:"_type"` // header, event, footer

	ID        string    `json:"id,omitempty"`
	BotID     string    `json:"bot_id,omitempty"`
	ChannelID string    `json:"channel_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	*Event `json:",omitempty"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// FileStore implements Store as one JSONL file per session under dir.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a FileStore over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Save writes sess to dir/<id>.jsonl as header/event.../footer records.
func (s *FileStore) Save(sess *Session) error {
	path := filepath.Join(s.dir, sess.ID+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer f.Close()

	header := JSONLRecord{RecordType: "header", ID: sess.ID, BotID: sess.BotID, ChannelID: sess.ChannelID, CreatedAt: sess.CreatedAt}
	if err := s.writeLine(f, header); err != nil {
		return err
	}
	for _, evt := range sess.Events {
		evtCopy := evt
		if err := s.writeLine(f, JSONLRecord{RecordType: "event", Event: &evtCopy}); err != nil {
			return err
		}
	}
	footer := JSONLRecord{RecordType: "footer", UpdatedAt: sess.UpdatedAt}
	return s.writeLine(f, footer)
}

func (s *FileStore) writeLine(f *os.File, record JSONLRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	_, err = f.WriteString("\n")
	return err
}

// Load reads a session back from dir/<id>.jsonl.
func (s *FileStore) Load(id string) (*Session, error) {
	path := filepath.Join(s.dir, id+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sess := &Session{}
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if len(line) > 0 {
					if perr := s.parseLine(line, sess); perr != nil {
						return nil, perr
					}
				}
				break
			}
			return nil, fmt.Errorf("error reading session: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if err := s.parseLine(line, sess); err != nil {
			return nil, err
		}
	}

	if len(sess.Events) > 0 {
		sess.seqCounter = sess.Events[len(sess.Events)-1].SeqID
	}
	return sess, nil
}

func (s *FileStore) parseLine(line []byte, sess *Session) error {
	var record JSONLRecord
	if err := json.Unmarshal(line, &record); err != nil {
		return fmt.Errorf("failed to parse session line: %w", err)
	}
	switch record.RecordType {
	case "header":
		sess.ID = record.ID
		sess.BotID = record.BotID
		sess.ChannelID = record.ChannelID
		sess.CreatedAt = record.CreatedAt
	case "event":
		if record.Event != nil {
			sess.Events = append(sess.Events, *record.Event)
		}
	case "footer":
		sess.UpdatedAt = record.UpdatedAt
	}
	return nil
}

// List returns every session ID persisted under dir.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && filepath.Ext(name) == ".jsonl" {
			ids = append(ids, name[:len(name)-len(".jsonl")])
		}
	}
	return ids, nil
}
