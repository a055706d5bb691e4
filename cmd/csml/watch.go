package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchCmd re-lints a bot's flows whenever one of its source files
// changes on disk, a dev-loop convenience for bot authors.
func watchCmd(args []string) {
	manifestPath, _, _ := resolveFlag(args, "manifest")
	if manifestPath == "" {
		manifestPath = "bot.yaml"
	}

	runOnce := func() {
		pb, parseErrs := loadAndParseBot(manifestPath)
		if pb == nil {
			printIssues(parseErrs, nil)
			return
		}
		issues := lintBot(pb)
		printIssues(parseErrs, issues)
		if len(parseErrs) == 0 && len(issues) == 0 {
			fmt.Println("ok: no parse errors or lint issues")
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating watcher: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	dir := filepath.Dir(manifestPath)
	if err := watcher.Add(dir); err != nil {
		fmt.Fprintf(os.Stderr, "error: watching %s: %v\n", dir, err)
		os.Exit(1)
	}

	fmt.Printf("watching %s for changes (Ctrl-C to stop)\n", dir)
	runOnce()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".csml" && filepath.Base(event.Name) != filepath.Base(manifestPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Printf("\n--- %s changed ---\n", event.Name)
			runOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
