package diff

import (
	"fmt"

	"github.com/flier/astdiff/pkg/decomp"
	"github.com/flier/astdiff/pkg/opt"
	"github.com/flier/astdiff/pkg/store"
)

// Op discriminates the edit actions.
type Op uint8

const (
	// OpDelete removes the node at the path.
	OpDelete Op = iota
	// OpUpdate relabels the node at the path.
	OpUpdate
	// OpInsert adds a single node at the path, taking its kind and label
	// from the root of Sub. Its descendants are placed by their own actions.
	OpInsert
	// OpMove reparents the node at From to the path.
	OpMove
	// OpMoveUpdate is a move combined with a relabel.
	OpMoveUpdate
)

func (op Op) String() string {
	switch op {
	case OpDelete:
		return "Del"
	case OpUpdate:
		return "Upd"
	case OpInsert:
		return "Ins"
	case OpMove:
		return "Mov"
	case OpMoveUpdate:
		return "MoU"
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// ApplicablePath names a node twice: Ori in the original src or dst tree,
// Mid in the evolving target tree at the moment the action applies. Replaying
// a script interprets Mid; tooling mapping actions back onto the inputs
// interprets Ori.
type ApplicablePath struct {
	Ori decomp.Path
	Mid decomp.Path
}

func (p ApplicablePath) String() string {
	return fmt.Sprintf("{ori: %v, mid: %v}", p.Ori, p.Mid)
}

// Action is one step of an edit script. Actions are pure values and may
// outlive the diff session.
type Action struct {
	Op   Op
	Path ApplicablePath

	// Sub is the destination subtree whose root node is inserted, for
	// OpInsert.
	Sub store.NodeId
	// NewLabel is the replacement label, for OpUpdate and OpMoveUpdate;
	// None strips the label.
	NewLabel opt.Option[store.LabelId]
	// From is the source position, for OpMove and OpMoveUpdate.
	From ApplicablePath
}

func (a Action) String() string {
	switch a.Op {
	case OpUpdate:
		return fmt.Sprintf("%v %v %v", a.Op, a.NewLabel, a.Path)
	case OpInsert:
		return fmt.Sprintf("%v %d %v", a.Op, a.Sub, a.Path)
	case OpMove:
		return fmt.Sprintf("%v %v %v", a.Op, a.From, a.Path)
	case OpMoveUpdate:
		return fmt.Sprintf("%v %v %v %v", a.Op, a.From, a.NewLabel, a.Path)
	default:
		return fmt.Sprintf("%v %v", a.Op, a.Path)
	}
}
