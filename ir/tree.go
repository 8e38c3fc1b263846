package ir

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// ControlFlowTree renders the nesting of IF, ELSE, loops and subroutines.
// Straight-line runs are collapsed into a single node with their length.
func (p *Program) ControlFlowTree() treeprint.Tree {
	root := treeprint.New()
	root.SetValue(fmt.Sprintf("%s program (%d instructions)", p.Stage, len(p.Instructions)))

	entries := make(map[int]bool)
	for _, inst := range p.Instructions {
		if inst.Op == OpCAL && inst.Label >= 0 {
			entries[inst.Label] = true
		}
	}

	stack := []treeprint.Tree{root}
	top := func() treeprint.Tree { return stack[len(stack)-1] }
	run := 0
	flush := func() {
		if run > 0 {
			top().AddNode(fmt.Sprintf("%d instructions", run))
			run = 0
		}
	}

	for i, inst := range p.Instructions {
		if entries[i] {
			flush()
			stack = stack[:1]
			stack = append(stack, root.AddBranch(fmt.Sprintf("subroutine @%d", i)))
		}
		switch inst.Op {
		case OpIF, OpUIF, OpBGNLOOP:
			flush()
			stack = append(stack, top().AddBranch(fmt.Sprintf("%d: %s", i, inst)))
		case OpELSE:
			flush()
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, top().AddBranch(fmt.Sprintf("%d: ELSE", i)))
		case OpENDIF, OpENDLOOP:
			flush()
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case OpCAL, OpRET, OpBRK, OpBREAKC, OpKILLIF, OpEND:
			flush()
			top().AddNode(fmt.Sprintf("%d: %s", i, inst))
		default:
			run++
		}
	}
	flush()
	return root
}
