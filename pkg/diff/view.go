package diff

import (
	"github.com/flier/astdiff/pkg/store"
)

// View is the read surface the matchers need from a post-order view. Both
// [decomp.Complete] and [decomp.Lazy] satisfy it; the subtree phase runs on
// lazy views so tall trees are only decompressed where the match frontier
// actually descends.
type View interface {
	Len() int
	Root() int
	Original(i int) store.NodeId
	Children(i int) []int
	Parent(i int) int
	HasParent(i int) bool
	PositionInParent(i int) int
	DescendantsRange(i int) (lo, hi int)
	Parents(i int) []int
	Store() *store.Store
}
