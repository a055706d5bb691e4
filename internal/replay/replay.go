package replay

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/csml-lang/csml-go/internal/session"
)

// Options controls how much detail Render prints, adapted from
// internal/replay.go's Verbose counter idiom (-v, -vv).
type Options struct {
	Verbose bool // print full message/memory content, not just a summary
	NoColor bool
}

// Render writes a human-readable rendering of sess's turn log to w,
// one line (or block, for multi-line message content) per event, in
// source order — the same order the side-channel sink received them
// during each turn (spec §5 "Ordering guarantees").
func Render(w io.Writer, sess *session.Session, opts Options) {
	fmt.Fprintln(w, title(fmt.Sprintf("Session %s — bot %s, channel %s", sess.ID, sess.BotID, sess.ChannelID)))
	fmt.Fprintln(w, divider)

	for _, ev := range sess.Events {
		renderEvent(w, ev, opts)
	}

	fmt.Fprintln(w, divider)
	fmt.Fprintf(w, "%s %d events, %s\n", label("total:"), len(sess.Events), value(sess.UpdatedAt.Sub(sess.CreatedAt).String()))
}

func renderEvent(w io.Writer, ev session.Event, opts Options) {
	seq := seqStyle.Render(fmt.Sprintf("#%d", ev.SeqID))
	ts := timeStyle.Render(ev.Timestamp.Format(time.TimeOnly))

	switch ev.Type {
	case session.EventTurnStart:
		fmt.Fprintf(w, "%s %s %s %s\n", seq, ts, dim("▶ turn start"), loc(ev.Flow, ev.Step))
	case session.EventHoldResume:
		fmt.Fprintf(w, "%s %s %s %s\n", seq, ts, holdStyle.Render("▶ resume"), loc(ev.Flow, ev.Step))
	case session.EventMessage:
		body := summarizeContent(ev.Content, opts.Verbose)
		fmt.Fprintf(w, "%s %s %s [%s] %s\n", seq, ts, messageStyle.Render("say"), ev.ContentType, body)
	case session.EventMemory:
		if ev.Forget {
			fmt.Fprintf(w, "%s %s %s %s\n", seq, ts, memoryStyle.Render("forget"), ev.MemoryKey)
		} else {
			body := summarizeContent(ev.MemoryValue, opts.Verbose)
			fmt.Fprintf(w, "%s %s %s %s = %s\n", seq, ts, memoryStyle.Render("remember"), ev.MemoryKey, body)
		}
	case session.EventHoldSet:
		fmt.Fprintf(w, "%s %s %s at instruction %d\n", seq, ts, holdStyle.Render("⏸ hold"), ev.HoldIndex)
	case session.EventNext:
		style := dimStyle
		switch ev.NextKind {
		case "End":
			style = endStyle
		case "Goto":
			style = gotoStyle
		case "Error":
			style = errorStyle
		}
		fmt.Fprintf(w, "%s %s %s %s\n", seq, ts, style.Render("→ "+ev.NextKind), loc(ev.Flow, ev.Step))
	case session.EventError:
		fmt.Fprintf(w, "%s %s %s %s\n", seq, ts, errorStyle.Render("✗ error"), ev.Error)
	default:
		fmt.Fprintf(w, "%s %s %s\n", seq, ts, dim(ev.Type))
	}
}

func loc(flow, step string) string {
	if flow == "" && step == "" {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("(%s@%s)", step, flow))
}

func summarizeContent(v any, verbose bool) string {
	s := fmt.Sprintf("%v", v)
	if !verbose && len(s) > 120 {
		s = s[:117] + "..."
	}
	return valueStyle.Render(s)
}

func title(s string) string  { return titleStyle.Render(s) }
func label(s string) string  { return labelStyle.Render(s) }
func value(s string) string  { return valueStyle.Render(s) }
func dim(s string) string    { return dimStyle.Render(s) }

// Summarize returns a one-line digest of a session, used by `csml
// replay --list` to preview many sessions without rendering each in full.
func Summarize(sess *session.Session) string {
	var counts = map[string]int{}
	for _, ev := range sess.Events {
		counts[ev.Type]++
	}
	var parts []string
	for _, t := range []string{session.EventMessage, session.EventMemory, session.EventHoldSet, session.EventError} {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", t, n))
		}
	}
	return fmt.Sprintf("%s (%s/%s): %s", sess.ID, sess.BotID, sess.ChannelID, strings.Join(parts, " "))
}
