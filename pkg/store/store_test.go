package store_test

import (
	"fmt"
	"math/rand"
	"testing"

	fuzz "github.com/google/gofuzz"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/astdiff/pkg/opt"
	"github.com/flier/astdiff/pkg/store"
	"github.com/flier/astdiff/pkg/store/kinds"
)

func expr(st *store.Store, label string) store.NodeId {
	return st.Insert(kinds.Expr, opt.Some(st.InternLabel(label)), nil)
}

func block(st *store.Store, children ...store.NodeId) store.NodeId {
	return st.Insert(kinds.Block, opt.None[store.LabelId](), children)
}

func spaces(st *store.Store, text string) store.NodeId {
	return st.Insert(kinds.Spaces, opt.Some(st.InternLabel(text)), nil)
}

func TestLabelInterner(t *testing.T) {
	Convey("Given an empty store", t, func() {
		st := store.New()

		Convey("Interning returns monotonic ids", func() {
			a := st.InternLabel("a")
			b := st.InternLabel("b")
			So(b, ShouldEqual, a+1)
		})

		Convey("Equal strings share one id", func() {
			So(st.InternLabel("hello"), ShouldEqual, st.InternLabel("hello"))
		})

		Convey("Labels round-trip", func() {
			for _, s := range []string{"", "x", "héllo", "a\nb", "\t \n"} {
				So(st.ResolveLabel(st.InternLabel(s)), ShouldEqual, s)
			}
		})

		Convey("FindLabel does not intern", func() {
			_, ok := st.FindLabel("absent")
			So(ok, ShouldBeFalse)

			id := st.InternLabel("present")
			got, ok := st.FindLabel("present")
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, id)
		})
	})
}

func TestLabelRoundTripFuzz(t *testing.T) {
	Convey("Random UTF-8 labels round-trip", t, func() {
		st := store.New()
		f := fuzz.New()

		for i := 0; i < 500; i++ {
			var s string
			f.Fuzz(&s)
			So(st.ResolveLabel(st.InternLabel(s)), ShouldEqual, s)
		}
	})
}

func TestInsertDedup(t *testing.T) {
	Convey("Given a store with a small tree", t, func() {
		st := store.New()
		a := expr(st, "a")
		root := block(st, a, expr(st, "b"))
		grown := st.Len()

		Convey("Re-inserting the same builder sequence is idempotent", func() {
			a2 := expr(st, "a")
			root2 := block(st, a2, expr(st, "b"))

			So(a2, ShouldEqual, a)
			So(root2, ShouldEqual, root)
			So(st.Len(), ShouldEqual, grown)
		})

		Convey("Shared subtrees intern once", func() {
			left := block(st, expr(st, "a"))
			right := block(st, expr(st, "a"))
			So(left, ShouldEqual, right)
		})

		Convey("Different labels yield different ids", func() {
			So(expr(st, "a"), ShouldNotEqual, expr(st, "c"))
		})

		Convey("Absent label differs from empty label", func() {
			none := st.Insert(kinds.Expr, opt.None[store.LabelId](), nil)
			empty := expr(st, "")
			So(none, ShouldNotEqual, empty)
			So(st.Resolve(none).Hash(store.HashLabel),
				ShouldNotEqual, st.Resolve(empty).Hash(store.HashLabel))
		})

		Convey("Child order matters", func() {
			ab := block(st, expr(st, "a"), expr(st, "b"))
			ba := block(st, expr(st, "b"), expr(st, "a"))
			So(ab, ShouldNotEqual, ba)
			So(st.Resolve(ab).Hash(store.HashSyntax),
				ShouldNotEqual, st.Resolve(ba).Hash(store.HashSyntax))
		})
	})
}

func TestInsertIdempotentFuzz(t *testing.T) {
	Convey("Random builder sequences inserted twice yield identical ids", t, func() {
		st := store.New()
		f := fuzz.New().NumElements(0, 4)

		var build func(depth int) store.NodeId
		build = func(depth int) store.NodeId {
			var label string
			f.Fuzz(&label)
			if depth >= 3 {
				return expr(st, label)
			}
			var n uint8
			f.Fuzz(&n)
			children := make([]store.NodeId, 0, n%4)
			for i := 0; i < int(n%4); i++ {
				children = append(children, build(depth+1))
			}
			return st.Insert(kinds.Block, opt.None[store.LabelId](), children)
		}

		for i := 0; i < 50; i++ {
			f = fuzz.New().RandSource(rand.NewSource(int64(i))).NumElements(0, 4)
			root1 := build(0)
			before := st.Len()

			f = fuzz.New().RandSource(rand.NewSource(int64(i))).NumElements(0, 4)
			root2 := build(0)

			So(root2, ShouldEqual, root1)
			So(st.Len(), ShouldEqual, before)
		}
	})
}

func TestMetrics(t *testing.T) {
	Convey("Given a tree with spacing", t, func() {
		st := store.New()
		//   block
		//     expr "foo"
		//     spaces "\n  "
		//     expr "bar"
		foo := expr(st, "foo")
		ws := spaces(st, "\n  ")
		bar := expr(st, "bar")
		root := block(st, foo, ws, bar)
		r := st.Resolve(root)

		Convey("Size composes over children", func() {
			So(r.Size(), ShouldEqual, 4)
			So(st.Resolve(foo).Size(), ShouldEqual, 1)
		})

		Convey("Spacing nodes are excluded from the no-space size", func() {
			So(r.SizeNoSpaces(), ShouldEqual, 3)
			So(st.Resolve(ws).SizeNoSpaces(), ShouldEqual, 0)
		})

		Convey("Height is one more than the tallest child", func() {
			So(r.Height(), ShouldEqual, 2)
			So(st.Resolve(foo).Height(), ShouldEqual, 1)
		})

		Convey("Byte length preserves the exact text", func() {
			So(r.BytesLen(), ShouldEqual, uint32(len("foo")+len("\n  ")+len("bar")))
		})

		Convey("Line count follows the label line breaks", func() {
			So(r.LineCount(), ShouldEqual, 1)
		})

		Convey("The query mask folds up spacing", func() {
			So(r.Mask()&store.MaskSpaces, ShouldNotEqual, 0)
			So(st.Resolve(foo).Mask()&store.MaskSpaces, ShouldEqual, 0)
		})

		Convey("NoSpaceChildren filters spacing, Children does not", func() {
			So(r.Children(), ShouldResemble, []store.NodeId{foo, ws, bar})
			So(r.NoSpaceChildren(), ShouldResemble, []store.NodeId{foo, bar})
		})
	})

	Convey("Statement kinds fold into the mask", t, func() {
		st := store.New()
		cond := expr(st, "x")
		body := block(st, expr(st, "y"))
		ifid := st.Insert(kinds.If, opt.None[store.LabelId](), []store.NodeId{cond, body})
		outer := block(st, ifid)

		So(st.Resolve(outer).Mask()&store.MaskStatement, ShouldNotEqual, 0)
		So(st.Resolve(outer).Mask()&store.MaskBranch, ShouldNotEqual, 0)
		So(st.Resolve(body).Mask()&store.MaskStatement, ShouldEqual, 0)
	})
}

func TestHashes(t *testing.T) {
	Convey("Given structurally equal trees with different labels", t, func() {
		st := store.New()
		t1 := block(st, expr(st, "a"), expr(st, "b"))
		t2 := block(st, expr(st, "x"), expr(st, "y"))

		Convey("Structural hashes agree, label hashes differ", func() {
			r1, r2 := st.Resolve(t1), st.Resolve(t2)
			So(r1.Hash(store.HashStructural), ShouldEqual, r2.Hash(store.HashStructural))
			So(r1.Hash(store.HashLabel), ShouldNotEqual, r2.Hash(store.HashLabel))
			So(r1.Hash(store.HashSyntax), ShouldNotEqual, r2.Hash(store.HashSyntax))
		})

		Convey("Equal ids have equal hashes of all kinds", func() {
			t3 := block(st, expr(st, "a"), expr(st, "b"))
			So(t3, ShouldEqual, t1)
			for _, k := range []store.HashKind{store.HashStructural, store.HashLabel, store.HashSyntax} {
				So(st.Resolve(t3).Hash(k), ShouldEqual, st.Resolve(t1).Hash(k))
			}
		})
	})
}

func TestChildLayouts(t *testing.T) {
	Convey("Given nodes of every arity class", t, func() {
		st := store.New()
		leaves := make([]store.NodeId, 5)
		for i := range leaves {
			leaves[i] = expr(st, fmt.Sprintf("leaf%d", i))
		}

		for _, n := range []int{0, 1, 2, 3, 5} {
			n := n
			Convey(fmt.Sprintf("Arity %d resolves its children", n), func() {
				id := block(st, leaves[:n]...)
				r := st.Resolve(id)
				So(r.ChildCount(), ShouldEqual, n)
				for i := 0; i < n; i++ {
					So(r.Child(i), ShouldEqual, leaves[i])
				}
				So(len(r.Children()), ShouldEqual, n)
			})
		}
	})
}
