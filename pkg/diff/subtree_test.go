package diff

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/astdiff/pkg/decomp"
	"github.com/flier/astdiff/pkg/store"
	"github.com/flier/astdiff/pkg/store/kinds"
)

func TestSubtreeMatcherIsomorphic(t *testing.T) {
	Convey("Given trees sharing one tall subtree", t, func() {
		st := store.New()
		shared := node(st, kinds.Block, leaf(st, "s1"), leaf(st, "s2"))
		src := node(st, kinds.Block, shared, leaf(st, "only-src"))
		dst := node(st, kinds.Block, leaf(st, "only-dst"), shared)

		sv := decomp.New(st, src)
		dv := decomp.New(st, dst)
		m := NewMapping()
		matchGreedySubtrees(sv, dv, m, 2)

		Convey("The shared subtree maps wholesale, descendants included", func() {
			// src: s1=0, s2=1, shared=2, only-src=3, root=4.
			// dst: only-dst=0, s1=1, s2=2, shared=3, root=4.
			So(m.Has(2, 3), ShouldBeTrue)
			So(m.Has(0, 1), ShouldBeTrue)
			So(m.Has(1, 2), ShouldBeTrue)
		})

		Convey("Nothing else is mapped", func() {
			So(m.Len(), ShouldEqual, 3)
			So(m.IsSrc(3), ShouldBeFalse)
			So(m.IsDst(0), ShouldBeFalse)
			So(m.IsSrc(4), ShouldBeFalse)
		})
	})
}

func TestSubtreeMatcherMinHeight(t *testing.T) {
	Convey("Given identical leaves under differing roots", t, func() {
		st := store.New()
		src := node(st, kinds.Block, leaf(st, "same"), leaf(st, "src"))
		dst := node(st, kinds.Block, leaf(st, "same"), leaf(st, "dst"))

		Convey("The default cutoff ignores bare leaves", func() {
			m := NewMapping()
			matchGreedySubtrees(decomp.New(st, src), decomp.New(st, dst), m, 2)
			So(m.Len(), ShouldEqual, 0)
		})

		Convey("Lowering the cutoff to one matches them", func() {
			m := NewMapping()
			matchGreedySubtrees(decomp.New(st, src), decomp.New(st, dst), m, 1)
			So(m.Has(0, 0), ShouldBeTrue) // the "same" leaves
			So(m.Len(), ShouldEqual, 1)
		})
	})
}

func TestSubtreeMatcherAmbiguity(t *testing.T) {
	Convey("Given one src subtree with two dst twins", t, func() {
		st := store.New()
		twin := node(st, kinds.Block, leaf(st, "t1"), leaf(st, "t2"))

		src := node(st, kinds.Block, twin, leaf(st, "padS"))
		dst := node(st, kinds.Block, twin, leaf(st, "padD"), twin)

		sv := decomp.New(st, src)
		dv := decomp.New(st, dst)
		m := NewMapping()
		matchGreedySubtrees(sv, dv, m, 2)

		Convey("The positionally closer twin wins; the other stays free", func() {
			// src: t1=0, t2=1, twin=2, padS=3, root=4.
			// dst: t1=0, t2=1, twin=2, padD=3, t1=4, t2=5, twin=6, root=7.
			So(m.Has(2, 2), ShouldBeTrue)
			So(m.Has(0, 0), ShouldBeTrue)
			So(m.Has(1, 1), ShouldBeTrue)
			So(m.IsDst(6), ShouldBeFalse)
			So(m.Len(), ShouldEqual, 3)
		})
	})
}

func TestIsomorphismCheck(t *testing.T) {
	Convey("Structural recursion confirms what fingerprints suggest", t, func() {
		st := store.New()
		a := node(st, kinds.Block, leaf(st, "x"))
		b := node(st, kinds.Block, leaf(st, "x"))
		c := node(st, kinds.If, leaf(st, "x"))

		sv := decomp.New(st, node(st, kinds.Block, a, c))
		dv := decomp.New(st, node(st, kinds.Block, b, c))
		m := &subtreeMatcher{src: sv, dst: dv, mappings: NewMapping(), minHeight: 1}

		So(a, ShouldEqual, b) // interning collapses equal subtrees
		So(m.isomorphicAux(a, b, true), ShouldBeTrue)
		So(m.isomorphicAux(a, c, true), ShouldBeFalse)
	})
}
