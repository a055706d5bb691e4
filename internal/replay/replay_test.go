package replay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/session"
	"github.com/csml-lang/csml-go/internal/value"
)

func buildSession() *session.Session {
	sess := session.New("bot-1", "chan-1")
	sess.RecordTurnStart("main", "start", false)
	sess.RecordMessage("main", "start", data.Message{ContentType: "text", Content: "hi there"})
	sess.RecordMemory("main", "start", data.MemoryUpdate{Key: "name", Value: value.String("Ada")})
	sess.RecordNext(data.Next{Kind: data.NextEnd})
	return sess
}

func TestRender_IncludesEveryEvent(t *testing.T) {
	sess := buildSession()
	var buf bytes.Buffer
	Render(&buf, sess, Options{NoColor: true})

	out := buf.String()
	for _, want := range []string{sess.ID, "bot-1", "chan-1", "turn start", "say", "remember", "End"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected rendered output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRender_TruncatesLongContentUnlessVerbose(t *testing.T) {
	sess := session.New("bot-1", "chan-1")
	long := strings.Repeat("x", 200)
	sess.RecordMessage("main", "start", data.Message{ContentType: "text", Content: long})

	var terse bytes.Buffer
	Render(&terse, sess, Options{Verbose: false, NoColor: true})
	if strings.Contains(terse.String(), long) {
		t.Error("expected long content to be truncated when not verbose")
	}

	var full bytes.Buffer
	Render(&full, sess, Options{Verbose: true, NoColor: true})
	if !strings.Contains(full.String(), long) {
		t.Error("expected full content to appear when verbose")
	}
}

func TestSummarize(t *testing.T) {
	sess := buildSession()
	summary := Summarize(sess)
	if !strings.Contains(summary, sess.ID) {
		t.Errorf("expected summary to contain session ID, got %q", summary)
	}
	if !strings.Contains(summary, "message=1") {
		t.Errorf("expected summary to count one message event, got %q", summary)
	}
}
