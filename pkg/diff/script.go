package diff

import (
	"github.com/flier/astdiff/internal/debug"
	"github.com/flier/astdiff/pkg/decomp"
	"github.com/flier/astdiff/pkg/store"
)

// midNode is one node of the script generator's working copy. The mid tree
// starts as the src post-order and evolves towards the dst shape as actions
// are emitted; insertions extend the arena past the original src length.
type midNode struct {
	parent     int
	compressed store.NodeId
	children   []int
}

// scriptGenerator turns a finalised mapping into an ordered action list that
// transforms the src tree into the dst tree. Actions are emitted in the
// order they are applied to the mid tree, so replaying them against a fresh
// copy of src yields dst.
type scriptGenerator struct {
	st       *store.Store
	srcArena *decomp.Complete
	dstArena *decomp.Complete

	oriMappings *Mapping
	cpyMappings *Mapping

	midArena []midNode
	midRoot  []int

	actions []Action

	srcInOrder map[int]bool
	dstInOrder map[int]bool

	bud *budget
}

// generateScript runs phase 3. On error the returned actions hold the
// partial script emitted so far.
func generateScript(st *store.Store, srcArena, dstArena *decomp.Complete, m *Mapping, bud *budget) ([]Action, error) {
	g := &scriptGenerator{
		st:          st,
		srcArena:    srcArena,
		dstArena:    dstArena,
		oriMappings: m,
		cpyMappings: m.Clone(),
		srcInOrder:  make(map[int]bool),
		dstInOrder:  make(map[int]bool),
		bud:         bud,
	}
	g.initMid()

	if err := g.insMovUpd(); err != nil {
		return g.actions, err
	}
	if err := g.del(); err != nil {
		return g.actions, err
	}
	return g.actions, nil
}

// initMid copies the src post-order into the mid arena.
func (g *scriptGenerator) initMid() {
	n := g.srcArena.Len()
	g.midArena = make([]midNode, n)
	for x := 0; x < n; x++ {
		var cs []int
		if src := g.srcArena.Children(x); len(src) > 0 {
			cs = append(cs, src...)
		}
		g.midArena[x] = midNode{
			parent:     g.srcArena.Parent(x),
			compressed: g.srcArena.Original(x),
			children:   cs,
		}
	}
	g.midRoot = []int{g.srcArena.Root()}
}

// insMovUpd walks dst breadth-first, emitting inserts for unmapped nodes and
// moves/updates for mapped ones, aligning children after each node.
func (g *scriptGenerator) insMovUpd() error {
	for _, x := range g.dstArena.IterBF() {
		if err := g.bud.tick(); err != nil {
			return err
		}

		y := none
		if g.dstArena.HasParent(x) {
			y = g.dstArena.Parent(x)
		}
		z := none
		if y != none {
			z = g.cpyMappings.GetSrc(y)
		}

		var w int
		if !g.cpyMappings.IsDst(x) {
			w = g.insert(x, y, z)
		} else {
			var err error
			if w, err = g.movUpd(x, y, z); err != nil {
				return err
			}
		}

		g.srcInOrder[w] = true
		g.dstInOrder[x] = true
		g.alignChildren(w, x)
	}
	return nil
}

// insert emits an Insert for the unmapped dst node x and splices a fresh mid
// node under z (or as a new root).
func (g *scriptGenerator) insert(x, y, z int) int {
	k := none
	if y != none {
		k = g.findPos(x, y)
	}

	w := g.makeInsertedNode(x, z)

	ori := g.dstArena.Path(g.dstArena.Root(), x)
	var mid decomp.Path
	if z != none {
		mid = g.path(z).Extend(uint16(k))
		g.spliceChild(z, k, w)
	} else {
		mid = decomp.Path{uint16(len(g.midRoot))}
		g.midRoot = append(g.midRoot, w)
	}

	g.actions = append(g.actions, Action{
		Op:   OpInsert,
		Path: ApplicablePath{Ori: ori, Mid: mid},
		Sub:  g.dstArena.Original(x),
	})
	return w
}

// movUpd handles a mapped dst node: a move when its mid parent disagrees
// with the mapped dst parent, an update when only the labels differ.
func (g *scriptGenerator) movUpd(x, y, z int) (int, error) {
	w := g.cpyMappings.GetSrc(x)

	v := g.midArena[w].parent
	if v == w {
		v = none
	}

	wRef := g.st.Resolve(g.midArena[w].compressed)
	xRef := g.st.Resolve(g.dstArena.Original(x))
	if wRef.Kind() != xRef.Kind() {
		// A matcher must only pair nodes of one kind; anything else would
		// change the shape of the tree out from under the move/update.
		return w, ErrKindMismatch
	}

	wLabel := wRef.Label()
	xLabel := xRef.Label()

	switch {
	case z != v:
		from := ApplicablePath{Ori: g.origSrc(w), Mid: g.path(w)}

		g.detach(w, v)

		k := 0
		if y != none {
			k = g.findPos(x, y)
		}
		var mid decomp.Path
		if z != none {
			mid = g.path(z).Extend(uint16(k))
			g.spliceChild(z, k, w)
			g.midArena[w].parent = z
		} else {
			mid = decomp.Path{uint16(k)}
			g.midRoot = insertAt(g.midRoot, k, w)
			g.midArena[w].parent = w
		}
		ori := g.dstArena.Path(g.dstArena.Root(), x)

		act := Action{Op: OpMove, Path: ApplicablePath{Ori: ori, Mid: mid}, From: from}
		if wLabel != xLabel {
			act.Op = OpMoveUpdate
			act.NewLabel = xLabel
			g.midArena[w].compressed = g.dstArena.Original(x)
		}
		g.actions = append(g.actions, act)

	case wLabel != xLabel:
		g.actions = append(g.actions, Action{
			Op:       OpUpdate,
			Path:     ApplicablePath{Ori: g.origSrc(w), Mid: g.path(w)},
			NewLabel: xLabel,
		})
		g.midArena[w].compressed = g.dstArena.Original(x)

	default:
		// Already conforms locally; nothing to emit.
	}
	return w, nil
}

// del traverses the mid tree post-order, deleting every node the mapping
// never claimed. Paths are recorded before detaching.
func (g *scriptGenerator) del() error {
	type delFrame struct{ id, next int }

	for ri := 0; ri < len(g.midRoot); {
		root := g.midRoot[ri]
		rootDeleted := false
		stack := []delFrame{{root, 0}}

		for len(stack) > 0 {
			if err := g.bud.tick(); err != nil {
				return err
			}

			top := len(stack) - 1
			f := stack[top]
			if cs := g.midArena[f.id].children; f.next < len(cs) {
				stack[top].next++
				stack = append(stack, delFrame{cs[f.next], 0})
				continue
			}

			w := f.id
			stack = stack[:top]

			if g.cpyMappings.IsSrc(w) {
				continue
			}

			action := Action{
				Op:   OpDelete,
				Path: ApplicablePath{Ori: g.origSrc(w), Mid: g.path(w)},
			}

			if v := g.midArena[w].parent; v != w {
				removeValue(&g.midArena[v].children, w)
				// The parent frame already advanced past w; pull it back.
				stack[len(stack)-1].next--
			} else {
				g.midRoot = append(g.midRoot[:ri], g.midRoot[ri+1:]...)
				rootDeleted = true
			}

			g.actions = append(g.actions, action)
		}

		if !rootDeleted {
			ri++
		}
	}
	return nil
}

// alignChildren reorders the mapped children of (w, x) that fall outside a
// longest common subsequence, emitting one Move per misplaced child.
func (g *scriptGenerator) alignChildren(w, x int) {
	wc := append([]int(nil), g.midArena[w].children...)
	xc := g.dstArena.Children(x)

	for _, c := range wc {
		delete(g.srcInOrder, c)
	}
	for _, c := range xc {
		delete(g.dstInOrder, c)
	}

	var s1 []int
	for _, c := range wc {
		if d := g.cpyMappings.GetDst(c); d != none && contains(xc, d) {
			s1 = append(s1, c)
		}
	}
	var s2 []int
	for _, c := range xc {
		if s := g.cpyMappings.GetSrc(c); s != none && contains(wc, s) {
			s2 = append(s2, c)
		}
	}

	lcs := longestCommonSubsequence(s1, s2, g.cpyMappings.Has)
	inLcs := make(map[[2]int]bool, len(lcs))
	for _, p := range lcs {
		a, b := s1[p[0]], s2[p[1]]
		inLcs[[2]int{a, b}] = true
		g.srcInOrder[a] = true
		g.dstInOrder[b] = true
	}

	for _, a := range s1 {
		for _, b := range s2 {
			if !g.oriMappings.Has(a, b) || inLcs[[2]int{a, b}] {
				continue
			}

			from := ApplicablePath{Ori: g.origSrc(a), Mid: g.path(a)}

			removeValue(&g.midArena[w].children, a)
			k := g.findPos(b, x)
			g.spliceChild(w, k, a)

			g.actions = append(g.actions, Action{
				Op:   OpMove,
				Path: ApplicablePath{Ori: g.origSrc(w).Extend(uint16(k)), Mid: g.path(w).Extend(uint16(k))},
				From: from,
			})
			g.srcInOrder[a] = true
			g.dstInOrder[b] = true
		}
	}
}

// findPos picks the insertion index for the dst node x under its parent y:
// right after the mid position of the nearest in-order left sibling, or 0.
func (g *scriptGenerator) findPos(x, y int) int {
	siblings := g.dstArena.Children(y)

	for _, c := range siblings {
		if g.dstInOrder[c] {
			if c == x {
				return 0
			}
			break
		}
	}

	xpos := g.dstArena.PositionInParent(x)
	v := none
	for i := 0; i < xpos; i++ {
		if g.dstInOrder[siblings[i]] {
			v = siblings[i]
		}
	}
	if v == none {
		return 0
	}

	u := g.cpyMappings.GetSrc(v)
	p := g.midArena[u].parent
	upos := indexOf(g.midArena[p].children, u)
	return upos + 1
}

// makeInsertedNode extends the mid arena and the cpy mapping with a fresh
// node mirroring the dst node x.
func (g *scriptGenerator) makeInsertedNode(x, z int) int {
	w := len(g.midArena)
	parent := w
	if z != none {
		parent = z
	}
	g.midArena = append(g.midArena, midNode{
		parent:     parent,
		compressed: g.dstArena.Original(x),
	})

	g.cpyMappings.Topit(len(g.midArena), g.dstArena.Len())
	g.cpyMappings.Link(w, x)
	return w
}

// origSrc returns the path of a mid node in the original src tree. Only
// original nodes are ever asked for.
func (g *scriptGenerator) origSrc(v int) decomp.Path {
	debug.Assert(v < g.srcArena.Len(), "path of inserted mid node %d in src", v)
	return g.srcArena.Path(g.srcArena.Root(), v)
}

// path returns the current path of a mid node, the root slot first.
func (g *scriptGenerator) path(z int) decomp.Path {
	var r decomp.Path
	for {
		p := g.midArena[z].parent
		if p == z {
			r = append(r, uint16(indexOf(g.midRoot, z)))
			break
		}
		r = append(r, uint16(indexOf(g.midArena[p].children, z)))
		z = p
	}
	for l, rr := 0, len(r)-1; l < rr; l, rr = l+1, rr-1 {
		r[l], r[rr] = r[rr], r[l]
	}
	return r
}

func (g *scriptGenerator) spliceChild(parent, k, child int) {
	g.midArena[parent].children = insertAt(g.midArena[parent].children, k, child)
}

func (g *scriptGenerator) detach(w, v int) {
	if v != none {
		removeValue(&g.midArena[v].children, w)
	} else {
		removeValue(&g.midRoot, w)
	}
}

func insertAt(s []int, k, v int) []int {
	if k > len(s) {
		k = len(s)
	}
	s = append(s, 0)
	copy(s[k+1:], s[k:])
	s[k] = v
	return s
}

func removeValue(s *[]int, v int) {
	if i := indexOf(*s, v); i >= 0 {
		*s = append((*s)[:i], (*s)[i+1:]...)
	}
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func contains(s []int, v int) bool { return indexOf(s, v) >= 0 }
