// Package main is the entry point for the csml interpreter CLI:
// run/lint/parse/repl/replay/watch/init over .csml bot sources.
// Grounded on cmd/agent/main.go's os.Args switch dispatch, kept as a
// plain os.Args switch without a flag-parsing library, since csml's
// command surface is small enough not to need one (see DESIGN.md's
// dropped-deps ledger for alecthomas/kong).
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		runBot(args)
	case "lint":
		lintCmd(args)
	case "parse":
		parseCmd(args)
	case "repl":
		replCmd(args)
	case "replay":
		replayCmd(args)
	case "watch":
		watchCmd(args)
	case "init":
		initCmd(args)
	case "version":
		fmt.Printf("csml version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: csml <command> [options]

Commands:
  run                    Run a bot turn against an event
  lint                   Validate a bot's flows statically
  parse                  Parse flows and print the AST summary
  repl                   Interactive local REPL over a bot
  replay <session.jsonl> Render a persisted session's turn log
  watch                  Re-lint a bot's flows on save
  init <dir>             Scaffold a new bot manifest + starter flow
  version                Show version
  help                   Show this help

Bot Options:
  --manifest <path>      Bot manifest path (default: ./bot.yaml)

Run Options:
  --channel <id>         Conversation/channel id (default: "default")
  --event-type <type>    Event content_type (default: "text")
  --event-text <text>    Event content_value / text body
  --config <path>        Runtime config path (default: ./csml.toml)
  --reset                Discard any persisted context before running

Replay Options:
  --store <dir>          Session log directory (default: ./sessions)
  --verbose              Print full message/memory content
  --list                 List sessions instead of rendering one

Watch Options:
  --manifest <path>      Bot manifest path to re-lint on change`)
}
