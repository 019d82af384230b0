package rewrite

import (
	"sort"

	"go.uber.org/zap"

	"github.com/trewdev/trew/tree"
)

// SkipCause classifies why an operation in a batch was not applied.
type SkipCause int

const (
	// SkipDuplicate: same matched node and same recipe registered twice.
	SkipDuplicate SkipCause = iota
	// SkipOverlap: the matched node is inside another applied match;
	// the outer match wins.
	SkipOverlap
	// SkipDeclined: the recipe returned no replacement for this match.
	SkipDeclined
	// SkipConstruction: the recipe could not build a valid replacement.
	SkipConstruction
	// SkipForeign: the matched node is not part of the target tree.
	SkipForeign
)

func (c SkipCause) String() string {
	switch c {
	case SkipDuplicate:
		return "duplicate"
	case SkipOverlap:
		return "overlap"
	case SkipDeclined:
		return "declined"
	case SkipConstruction:
		return "construction"
	case SkipForeign:
		return "foreign"
	default:
		return "unknown"
	}
}

// Skip reports one operation that was not applied, and why.
type Skip struct {
	Op    Operation
	Cause SkipCause
	Err   error
}

// Report aggregates the outcome of one batch application.
type Report struct {
	Applied int
	Ops     []Operation // the operations that were applied, in document order
	Skipped []Skip
}

// Coordinator applies operation batches to target trees. It is the one
// component that serializes access to a tree: operations are collected and
// applied in a single step because overlap resolution needs the whole
// candidate set first.
type Coordinator struct {
	logger *zap.Logger
}

// NewCoordinator returns a coordinator that reports skipped operations to
// the given logger.
func NewCoordinator(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{logger: logger}
}

// ApplyAll applies a batch of operations against one tree and returns the
// transformed tree plus a report. The input tree is not mutated; the
// result is a fresh tree sharing no nodes with the input. Operations whose
// matched nodes are disjoint all apply; where one matched node contains
// another, the outer operation wins and the inner is skipped. A failing
// recipe skips only its own operation.
func (c *Coordinator) ApplyAll(root *tree.Node, ops []Operation) (*tree.Node, Report) {
	var report Report

	// position index: document (pre-order) order over the target tree
	order := make(map[*tree.Node]int)
	idx := 0
	tree.Walk(root, func(n *tree.Node) bool {
		order[n] = idx
		idx++
		return true
	})

	// dedupe by match identity: same matched node + same recipe,
	// guarding against a pattern registered twice
	type identity struct {
		node *tree.Node
		desc string
	}
	seen := make(map[identity]bool)
	var batch []Operation
	for _, op := range ops {
		if op.Match == nil || op.Build == nil {
			continue
		}
		if _, inTree := order[op.Match.Node]; !inTree {
			report.Skipped = append(report.Skipped, Skip{Op: op, Cause: SkipForeign})
			continue
		}
		id := identity{node: op.Match.Node, desc: op.Description}
		if seen[id] {
			report.Skipped = append(report.Skipped, Skip{Op: op, Cause: SkipDuplicate})
			continue
		}
		seen[id] = true
		batch = append(batch, op)
	}

	// document order puts ancestors before descendants, so accepting
	// greedily implements the outer-match-wins policy
	sort.SliceStable(batch, func(i, j int) bool {
		return order[batch[i].Match.Node] < order[batch[j].Match.Node]
	})

	type applied struct {
		op   Operation
		repl *tree.Node
	}
	var accepted []applied
	shadowed := func(n *tree.Node) bool {
		for _, a := range accepted {
			if n == a.op.Match.Node || n.HasAncestor(a.op.Match.Node) {
				return true
			}
		}
		return false
	}

	for _, op := range batch {
		if shadowed(op.Match.Node) {
			report.Skipped = append(report.Skipped, Skip{Op: op, Cause: SkipOverlap})
			continue
		}
		repl, err := op.Build(op.Match)
		if err != nil {
			c.logger.Warn("replacement construction failed",
				zap.String("operation", op.Description),
				zap.Error(err))
			report.Skipped = append(report.Skipped, Skip{Op: op, Cause: SkipConstruction, Err: err})
			continue
		}
		if repl == nil {
			report.Skipped = append(report.Skipped, Skip{Op: op, Cause: SkipDeclined})
			continue
		}
		accepted = append(accepted, applied{op: op, repl: repl})
	}

	if len(accepted) == 0 {
		return root, report
	}

	newRoot, mapping := root.CloneMapped()
	for _, a := range accepted {
		target := mapping[a.op.Match.Node]
		repl := a.repl.Clone()
		if target == newRoot {
			newRoot = repl
			continue
		}
		target.Parent.ReplaceChild(target, repl)
	}
	report.Applied = len(accepted)
	for _, a := range accepted {
		report.Ops = append(report.Ops, a.op)
	}
	return newRoot, report
}
