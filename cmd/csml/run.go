package main

import (
	"fmt"
	"os"

	"github.com/csml-lang/csml-go/internal/builtins"
	"github.com/csml-lang/csml-go/internal/config"
	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/interp"
	"github.com/csml-lang/csml-go/internal/session"
	"github.com/csml-lang/csml-go/internal/store"
	"github.com/csml-lang/csml-go/internal/tracing"
)

// runBot loads a bot, resolves (or creates) its persisted Context for
// a channel, drives one interpreter turn against a single event, and
// persists the resulting Context plus a session log entry. Grounded on
// cmd/agent/main.go's runWorkflow: resolve file, parse flags, build
// runtime, execute, report outcome.
func runBot(args []string) {
	manifestPath, _, args := resolveFlag(args, "manifest")
	if manifestPath == "" {
		manifestPath = "bot.yaml"
	}
	channel, _, args := resolveFlag(args, "channel")
	if channel == "" {
		channel = "default"
	}
	eventType, _, args := resolveFlag(args, "event-type")
	if eventType == "" {
		eventType = "text"
	}
	eventText, _, args := resolveFlag(args, "event-text")
	configPath, _, args := resolveFlag(args, "config")
	if configPath == "" {
		configPath = "csml.toml"
	}
	reset, args := hasFlag(args, "reset")
	_ = args

	pb, parseErrs := loadAndParseBot(manifestPath)
	if pb == nil {
		printIssues(parseErrs, nil)
		os.Exit(1)
	}
	if len(parseErrs) > 0 {
		printIssues(parseErrs, nil)
		os.Exit(1)
	}
	if issues := lintBot(pb); len(issues) > 0 {
		printIssues(nil, issues)
		os.Exit(1)
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		cfg = config.Default()
	}
	// No OTLP exporter is wired into the CLI; InitSDK is exercised by
	// hosts that configure one. The CLI always runs with a no-op
	// provider so spans are still well-formed, just undelivered.
	tracing.InitNoop()

	botID := pb.Manifest.Name

	var ctxStore *store.Store
	if cfg.Store.Persist {
		ctxStore, err = store.Open(store.Config{Path: cfg.Store.Path})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: opening context store: %v\n", err)
			os.Exit(1)
		}
		defer ctxStore.Close()
	}

	var ctx *data.Context
	if reset && ctxStore != nil {
		_ = ctxStore.Delete(botID, channel)
	}
	if ctxStore != nil && !reset {
		ctx, err = ctxStore.Load(botID, channel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: loading context: %v\n", err)
			os.Exit(1)
		}
	}
	if ctx == nil {
		defaultFlow := pb.Manifest.DefaultFlow
		if cfg.Bot.DefaultFlow != "" {
			defaultFlow = cfg.Bot.DefaultFlow
		}
		ctx = data.NewContext(defaultFlow, "start")
	}
	ctx.APIInfo = cfg.ResolveAPIInfo()

	event := &data.Event{ContentType: eventType, ContentValue: eventText, Content: map[string]any{"text": eventText}}

	sess := session.New(botID, channel)
	sink := &turnSink{sess: sess}

	ip := interp.New(interp.Bot(pb.Flows), builtins.Default())
	next := ip.Run(ctx, event, sink)

	for _, m := range sink.messages {
		fmt.Printf("[%s] %v\n", m.ContentType, m.Content)
	}

	if ctxStore != nil {
		if err := ctxStore.Save(botID, channel, ctx); err != nil {
			fmt.Fprintf(os.Stderr, "error: saving context: %v\n", err)
		}
	}

	sessDir := "sessions"
	if fileStore, err := session.NewFileStore(sessDir); err == nil {
		_ = fileStore.Save(sess)
	}

	switch next.Kind {
	case data.NextError:
		os.Exit(1)
	case data.NextEnd:
		fmt.Fprintln(os.Stderr, "next: end")
	case data.NextHold:
		fmt.Fprintln(os.Stderr, "next: hold")
	case data.NextGoto:
		fmt.Fprintf(os.Stderr, "next: goto %s@%s\n", next.Step, next.Flow)
	}
}

// turnSink implements data.Sink, collecting messages for CLI output
// while also recording every notification into a session for replay.
type turnSink struct {
	sess     *session.Session
	messages []data.Message
	flow     string
	step     string
}

func (s *turnSink) Message(m data.Message) {
	s.messages = append(s.messages, m)
	s.sess.RecordMessage(s.flow, s.step, m)
}
func (s *turnSink) Memory(u data.MemoryUpdate) { s.sess.RecordMemory(s.flow, s.step, u) }
func (s *turnSink) Hold(h data.Hold)           { s.sess.RecordHold(s.flow, s.step, h) }
func (s *turnSink) Next(n data.Next)           { s.flow, s.step = n.Flow, n.Step; s.sess.RecordNext(n) }
func (s *turnSink) Error(msg string)           { s.sess.RecordError(s.flow, s.step, msg) }

var _ data.Sink = (*turnSink)(nil)
