package main

import (
	"fmt"
	"os"
)

// lintCmd validates a bot's flows: parse errors plus every spec §4.E
// rule, including infinite-loop detection.
func lintCmd(args []string) {
	manifestPath, _, _ := resolveFlag(args, "manifest")
	if manifestPath == "" {
		manifestPath = "bot.yaml"
	}

	pb, parseErrs := loadAndParseBot(manifestPath)
	if pb == nil {
		printIssues(parseErrs, nil)
		os.Exit(1)
	}

	issues := lintBot(pb)
	printIssues(parseErrs, issues)

	if len(parseErrs) > 0 || len(issues) > 0 {
		fmt.Fprintf(os.Stderr, "%d parse error(s), %d lint issue(s)\n", len(parseErrs), len(issues))
		os.Exit(1)
	}
	fmt.Println("ok: no parse errors or lint issues")
}

// parseCmd parses a bot's flows and prints a one-line-per-instruction
// summary of the resulting AST, useful for inspecting instruction
// indices during hold/resume debugging.
func parseCmd(args []string) {
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

	for name, flow := range pb.Flows {
		fmt.Printf("flow %s:\n", name)
		for _, inst := range flow.Instructions {
			describeInstruction(inst, 1)
		}
	}
}
