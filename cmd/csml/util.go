package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/csml-lang/csml-go/internal/builtins"
	"github.com/csml-lang/csml-go/internal/linter"
	"github.com/csml-lang/csml-go/internal/manifest"
	"github.com/csml-lang/csml-go/internal/script"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// parsedBot is a fully parsed set of flows plus the manifest metadata
// needed to run it, grounded on cmd/agent/main.go's resolveAgentfile +
// runtime-build pipeline (load source -> parse -> lint -> run).
type parsedBot struct {
	Manifest *manifest.Manifest
	Flows    map[string]*script.Flow
}

// loadAndParseBot reads the manifest at manifestPath, parses every
// listed flow, and returns the combined parse errors (if any) without
// aborting early, mirroring spec §4.B: "a failure in step N reports
// and terminates the file parse; prior steps remain valid" applied at
// the bot level — one flow's parse failure does not stop the others.
func loadAndParseBot(manifestPath string) (*parsedBot, []error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, []error{fmt.Errorf("manifest: %w", err)}
	}
	sources, err := m.LoadBot()
	if err != nil {
		return nil, []error{fmt.Errorf("manifest: %w", err)}
	}

	flows := make(map[string]*script.Flow, len(sources))
	var errs []error
	for name, src := range sources {
		flow, perrs := script.ParseFlow(name, src)
		flows[name] = flow
		for _, pe := range perrs {
			errs = append(errs, fmt.Errorf("%s: %w", name, pe))
		}
	}
	return &parsedBot{Manifest: m, Flows: flows}, errs
}

// lintBot runs the static validator (spec §4.E) over every flow,
// including infinite-loop detection rooted at the manifest's default
// flow.
func lintBot(pb *parsedBot) []linter.Issue {
	lbot := linter.Bot(pb.Flows)
	idx := linter.BuildIndices(lbot)
	issues := linter.Validate(lbot, idx, builtins.Default().Names())
	issues = append(issues, linter.FindCycles(lbot, idx, pb.Manifest.DefaultFlow)...)
	return issues
}

// printIssues prints parse errors to stderr as "error: <flow>: <err>"
// and lint issues as "warning: line N: message".
func printIssues(parseErrs []error, lintIssues []linter.Issue) {
	for _, e := range parseErrs {
		fmt.Fprintf(os.Stderr, "error: %v\n", e)
	}
	for _, iss := range lintIssues {
		fmt.Fprintf(os.Stderr, "warning: %s\n", iss.Error())
	}
}

// resolveFlag finds `--name value` or `--name=value` in args, removing
// it from the returned remaining slice. Mirrors cmd/agent/main.go's
// resolveAgentfile flag-scanning idiom, generalized to any flag name.
func resolveFlag(args []string, name string) (value string, found bool, remaining []string) {
	long := "--" + name
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == long && i+1 < len(args):
			remaining = append(append([]string{}, args[:i]...), args[i+2:]...)
			return args[i+1], true, remaining
		case strings.HasPrefix(arg, long+"="):
			remaining = append(append([]string{}, args[:i]...), args[i+1:]...)
			return strings.TrimPrefix(arg, long+"="), true, remaining
		}
	}
	return "", false, args
}

func hasFlag(args []string, name string) (bool, []string) {
	long := "--" + name
	for i, arg := range args {
		if arg == long {
			remaining := append(append([]string{}, args[:i]...), args[i+1:]...)
			return true, remaining
		}
	}
	return false, args
}
