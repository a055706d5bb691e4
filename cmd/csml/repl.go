package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/csml-lang/csml-go/internal/builtins"
	"github.com/csml-lang/csml-go/internal/data"
	"github.com/csml-lang/csml-go/internal/interp"
	"github.com/csml-lang/csml-go/internal/tracing"
)

// replCmd holds a single in-memory Context and feeds typed lines in as
// events — a bot-authoring convenience with no channel integration
// required, grounded on cmd/agent/main.go's interactive fallback paths.
// Output is plain fmt text; no lipgloss styling is applied here.
func replCmd(args []string) {
	manifestPath, _, _ := resolveFlag(args, "manifest")
	if manifestPath == "" {
		manifestPath = "bot.yaml"
	}

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
		fmt.Fprintln(os.Stderr, "(continuing despite lint warnings)")
	}

	tracing.InitNoop()

	ctx := data.NewContext(pb.Manifest.DefaultFlow, "start")
	ip := interp.New(interp.Bot(pb.Flows), builtins.Default())

	fmt.Printf("csml repl — bot %q, default flow %q. Ctrl-D to exit.\n", pb.Manifest.Name, pb.Manifest.DefaultFlow)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		event := &data.Event{ContentType: "text", ContentValue: line, Content: map[string]any{"text": line}}
		sink := &discardingReplSink{}
		next := ip.Run(ctx, event, sink)
		for _, m := range sink.messages {
			fmt.Printf("bot [%s]: %v\n", m.ContentType, m.Content)
		}
		if next.Kind == data.NextEnd {
			fmt.Println("(flow ended; restarting at default flow)")
			ctx = data.NewContext(pb.Manifest.DefaultFlow, "start")
		}
	}
}

type discardingReplSink struct {
	messages []data.Message
}

func (s *discardingReplSink) Message(m data.Message)     { s.messages = append(s.messages, m) }
func (s *discardingReplSink) Memory(data.MemoryUpdate)   {}
func (s *discardingReplSink) Hold(data.Hold)             {}
func (s *discardingReplSink) Next(data.Next)             {}
func (s *discardingReplSink) Error(string)               {}

var _ data.Sink = (*discardingReplSink)(nil)
