package diff

import (
	"fmt"

	"github.com/flier/astdiff/pkg/decomp"
	"github.com/flier/astdiff/pkg/opt"
	"github.com/flier/astdiff/pkg/store"
	"github.com/flier/astdiff/pkg/store/kinds"
)

// applyNode is a mutable tree node used while replaying a script.
type applyNode struct {
	kind     kinds.Kind
	label    opt.Option[store.LabelId]
	children []*applyNode
}

// Apply replays an edit script against a fresh copy of src, interpreting
// each action's Mid path in the evolving tree, and interns the outcome.
//
// Applying the actions of a successful [Diff] yields the dst id; this is
// the executable form of the script soundness guarantee.
func Apply(st *store.Store, src store.NodeId, actions []Action) (store.NodeId, error) {
	roots := []*applyNode{unpack(st, src)}

	for i, a := range actions {
		var err error
		switch a.Op {
		case OpInsert:
			err = applyInsert(st, &roots, a)
		case OpUpdate:
			err = applyUpdate(st, roots, a)
		case OpMove, OpMoveUpdate:
			err = applyMove(st, &roots, a)
		case OpDelete:
			err = applyDelete(&roots, a)
		default:
			err = fmt.Errorf("unknown op %v", a.Op)
		}
		if err != nil {
			return 0, fmt.Errorf("diff: apply action %d (%v): %w", i, a, err)
		}
	}

	if len(roots) == 0 {
		return 0, fmt.Errorf("diff: apply deleted every root")
	}
	return pack(st, roots[len(roots)-1]), nil
}

func applyInsert(st *store.Store, roots *[]*applyNode, a Action) error {
	parent, k, err := locateSlot(*roots, a.Path.Mid)
	if err != nil {
		return err
	}

	// Sub names the destination subtree, but an insert grafts one node;
	// the descendants arrive through their own inserts and moves.
	ref := st.Resolve(a.Sub)
	n := &applyNode{kind: ref.Kind(), label: ref.Label()}

	if parent == nil {
		*roots = insertNode(*roots, k, n)
	} else {
		parent.children = insertNode(parent.children, k, n)
	}
	return nil
}

func applyUpdate(st *store.Store, roots []*applyNode, a Action) error {
	n, err := locate(roots, a.Path.Mid)
	if err != nil {
		return err
	}
	n.label = a.NewLabel
	return nil
}

func applyMove(st *store.Store, roots *[]*applyNode, a Action) error {
	n, err := detachAt(roots, a.From.Mid)
	if err != nil {
		return err
	}
	if a.Op == OpMoveUpdate {
		n.label = a.NewLabel
	}

	parent, k, err := locateSlot(*roots, a.Path.Mid)
	if err != nil {
		return err
	}
	if parent == nil {
		*roots = insertNode(*roots, k, n)
	} else {
		parent.children = insertNode(parent.children, k, n)
	}
	return nil
}

func applyDelete(roots *[]*applyNode, a Action) error {
	_, err := detachAt(roots, a.Path.Mid)
	return err
}

// locate resolves a mid path to its node.
func locate(roots []*applyNode, p decomp.Path) (*applyNode, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	if int(p[0]) >= len(roots) {
		return nil, fmt.Errorf("root slot %d of %d", p[0], len(roots))
	}
	n := roots[p[0]]
	for _, idx := range p[1:] {
		if int(idx) >= len(n.children) {
			return nil, fmt.Errorf("child %d of %d", idx, len(n.children))
		}
		n = n.children[idx]
	}
	return n, nil
}

// locateSlot resolves a mid path to its insertion slot: the parent node (nil
// for the root forest) and the child index.
func locateSlot(roots []*applyNode, p decomp.Path) (*applyNode, int, error) {
	if len(p) == 0 {
		return nil, 0, fmt.Errorf("empty path")
	}
	if len(p) == 1 {
		return nil, int(p[0]), nil
	}
	parent, err := locate(roots, p[:len(p)-1])
	if err != nil {
		return nil, 0, err
	}
	return parent, int(p[len(p)-1]), nil
}

// detachAt removes and returns the node at a mid path.
func detachAt(roots *[]*applyNode, p decomp.Path) (*applyNode, error) {
	parent, k, err := locateSlot(*roots, p)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		if k >= len(*roots) {
			return nil, fmt.Errorf("root slot %d of %d", k, len(*roots))
		}
		n := (*roots)[k]
		*roots = append((*roots)[:k], (*roots)[k+1:]...)
		return n, nil
	}
	if k >= len(parent.children) {
		return nil, fmt.Errorf("child %d of %d", k, len(parent.children))
	}
	n := parent.children[k]
	parent.children = append(parent.children[:k], parent.children[k+1:]...)
	return n, nil
}

func insertNode(s []*applyNode, k int, n *applyNode) []*applyNode {
	if k > len(s) {
		k = len(s)
	}
	s = append(s, nil)
	copy(s[k+1:], s[k:])
	s[k] = n
	return s
}

// unpack expands an interned subtree into mutable nodes.
func unpack(st *store.Store, id store.NodeId) *applyNode {
	ref := st.Resolve(id)
	n := &applyNode{kind: ref.Kind(), label: ref.Label()}
	for i := 0; i < ref.ChildCount(); i++ {
		n.children = append(n.children, unpack(st, ref.Child(i)))
	}
	return n
}

// pack re-interns a mutable tree bottom-up.
func pack(st *store.Store, n *applyNode) store.NodeId {
	children := make([]store.NodeId, len(n.children))
	for i, c := range n.children {
		children[i] = pack(st, c)
	}
	return st.Insert(n.kind, n.label, children)
}
