package data

// Sink receives side-channel notifications in source order during a
// turn: Message(m), Memory(k, v), Hold(h), Next{flow?, step?}, Error(m).
type Sink interface {
	Message(Message)
	Memory(update MemoryUpdate)
	Hold(h Hold)
	Next(n Next)
	Error(msg string)
}

// DiscardSink implements Sink by dropping every notification; useful
// when a caller only cares about the final turn result.
type DiscardSink struct{}

func (DiscardSink) Message(Message)          {}
func (DiscardSink) Memory(MemoryUpdate)      {}
func (DiscardSink) Hold(Hold)                {}
func (DiscardSink) Next(Next)                {}
func (DiscardSink) Error(string)             {}

// CollectingSink accumulates every notification, matching the
// interpreter's own output-log ownership (spec §3 "the log is owned
// by the interpreter and moved out at turn end").
type CollectingSink struct {
	Messages []Message
	Memory_  []MemoryUpdate
	Holds    []Hold
	Nexts    []Next
	Errors   []string
}

func (s *CollectingSink) Message(m Message)      { s.Messages = append(s.Messages, m) }
func (s *CollectingSink) Memory(u MemoryUpdate)  { s.Memory_ = append(s.Memory_, u) }
func (s *CollectingSink) Hold(h Hold)            { s.Holds = append(s.Holds, h) }
func (s *CollectingSink) Next(n Next)            { s.Nexts = append(s.Nexts, n) }
func (s *CollectingSink) Error(msg string)       { s.Errors = append(s.Errors, msg) }

var _ Sink = (*CollectingSink)(nil)
var _ Sink = DiscardSink{}
