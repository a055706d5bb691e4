package main

import (
	"fmt"
	"strings"

	"github.com/csml-lang/csml-go/internal/script"
)

// describeInstruction prints one top-level Instruction and, for steps
// and functions, its block's (index, total) annotations — the
// encoding hold/resume relies on (spec §4.B).
func describeInstruction(inst script.Instruction, indent int) {
	pad := strings.Repeat("  ", indent)
	switch n := inst.(type) {
	case *script.StepScope:
		fmt.Printf("%sstep %s:\n", pad, n.Name.Text)
		describeBlock(n.Body, indent+1)
	case *script.FunctionScope:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = p.Text
		}
		fmt.Printf("%sfn %s(%s):\n", pad, n.Name.Text, strings.Join(params, ", "))
		describeBlock(n.Body, indent+1)
	case *script.ImportScope:
		fmt.Printf("%simport %s\n", pad, n.Name.Text)
	case *script.DuplicateInstruction:
		fmt.Printf("%s<duplicate %s %q>\n", pad, n.Kind, n.Name)
	}
}

func describeBlock(b *script.Block, indent int) {
	if b == nil {
		return
	}
	pad := strings.Repeat("  ", indent)
	for _, item := range b.Items {
		fmt.Printf("%s[%d/%d] %T\n", pad, item.Index, item.Total, item.Stmt)
	}
}
