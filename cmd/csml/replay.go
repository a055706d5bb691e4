package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/csml-lang/csml-go/internal/replay"
	"github.com/csml-lang/csml-go/internal/session"
)

// replayCmd renders a persisted session's turn log, or lists every
// session under the store directory with --list.
func replayCmd(args []string) {
	storeDir, _, args := resolveFlag(args, "store")
	if storeDir == "" {
		storeDir = "sessions"
	}
	verbose, args := hasFlag(args, "verbose")
	list, args := hasFlag(args, "list")

	fileStore, err := session.NewFileStore(storeDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: opening session store: %v\n", err)
		os.Exit(1)
	}

	if list {
		ids, err := fileStore.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: listing sessions: %v\n", err)
			os.Exit(1)
		}
		for _, id := range ids {
			sess, err := fileStore.Load(id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: loading %s: %v\n", id, err)
				continue
			}
			fmt.Println(replay.Summarize(sess))
		}
		return
	}

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: replay requires a session id or path")
		os.Exit(1)
	}

	id := args[0]
	id = strings.TrimSuffix(filepath.Base(id), ".jsonl")
	sess, err := fileStore.Load(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading session %s: %v\n", id, err)
		os.Exit(1)
	}

	replay.Render(os.Stdout, sess, replay.Options{Verbose: verbose})
}
