package diff_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	fuzz "github.com/google/gofuzz"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/astdiff/pkg/diff"
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

func iff(st *store.Store, children ...store.NodeId) store.NodeId {
	return st.Insert(kinds.If, opt.None[store.LabelId](), children)
}

func TestDiffIdentity(t *testing.T) {
	Convey("Given identical trees", t, func() {
		st := store.New()
		root := iff(st, expr(st, "a"), block(st))

		res := diff.Diff(st, root, root, diff.DefaultConfig())

		Convey("The mapping is the total identity and the script empty", func() {
			So(res.Err, ShouldBeNil)
			So(res.Actions, ShouldBeEmpty)

			n := int(st.Resolve(root).Size())
			So(res.Mapping.Len(), ShouldEqual, n)
			for i := 0; i < n; i++ {
				So(res.Mapping.GetDst(i), ShouldEqual, i)
			}
		})
	})
}

func TestDiffBudgets(t *testing.T) {
	// A pair of trees big enough to spend ticks on.
	makeTrees := func(st *store.Store) (store.NodeId, store.NodeId) {
		var src, dst []store.NodeId
		for i := 0; i < 40; i++ {
			src = append(src, block(st, expr(st, fmt.Sprintf("s%d", i)), expr(st, fmt.Sprintf("t%d", i))))
			dst = append(dst, block(st, expr(st, fmt.Sprintf("d%d", i)), expr(st, fmt.Sprintf("e%d", i))))
		}
		return block(st, src...), block(st, dst...)
	}

	Convey("Given a comparison budget of one", t, func() {
		st := store.New()
		src, dst := makeTrees(st)

		cfg := diff.DefaultConfig()
		cfg.MaxComparisons = 1
		res := diff.Diff(st, src, dst, cfg)

		Convey("The session trips and surfaces the partial result", func() {
			So(errors.Is(res.Err, diff.ErrMaxComparisons), ShouldBeTrue)
			So(res.Mapping, ShouldNotBeNil)
		})
	})

	Convey("Given an expired deadline", t, func() {
		st := store.New()
		src, dst := makeTrees(st)

		cfg := diff.DefaultConfig()
		cfg.Deadline = 1 // nanosecond
		res := diff.Diff(st, src, dst, cfg)

		Convey("The session trips with a timeout", func() {
			So(errors.Is(res.Err, diff.ErrTimeout), ShouldBeTrue)
			So(res.Mapping, ShouldNotBeNil)
		})
	})

	Convey("Without budgets the same session completes", t, func() {
		st := store.New()
		src, dst := makeTrees(st)

		res := diff.Diff(st, src, dst, diff.DefaultConfig())
		So(res.Err, ShouldBeNil)
		So(res.Stats.TotalComparisons, ShouldBeGreaterThan, 0)
	})
}

func TestDiffStats(t *testing.T) {
	Convey("A session records its matcher counters", t, func() {
		st := store.New()
		src := block(st, block(st, expr(st, "a"), expr(st, "b")), expr(st, "k"))
		dst := block(st, block(st, expr(st, "a"), expr(st, "c")), expr(st, "j"))

		res := diff.Diff(st, src, dst, diff.DefaultConfig())

		So(res.Err, ShouldBeNil)
		So(res.Stats.SuccessfulMatches, ShouldBeGreaterThan, 0)
		So(res.Stats.TotalTime, ShouldBeGreaterThan, 0)
	})
}

func TestDiffConfigStrategies(t *testing.T) {
	strategies := map[string]func(*diff.Config){
		"statement level": func(c *diff.Config) { c.StatementLevel = true },
		"type grouping":   func(c *diff.Config) { c.StatementLevel = false; c.TypeGrouping = true },
		"naive":           func(c *diff.Config) { c.StatementLevel = false; c.TypeGrouping = false },
	}

	for name, tune := range strategies {
		name, tune := name, tune
		Convey("The "+name+" strategy produces a sound script", t, func() {
			st := store.New()
			src := block(st, iff(st, expr(st, "x"), block(st, expr(st, "y"))), expr(st, "tail"))
			dst := block(st, iff(st, expr(st, "x2"), block(st, expr(st, "y"))), expr(st, "tail"))

			cfg := diff.DefaultConfig()
			tune(&cfg)
			res := diff.Diff(st, src, dst, cfg)
			So(res.Err, ShouldBeNil)

			got, err := diff.Apply(st, src, res.Actions)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, dst)
		})
	}
}

// Script soundness over random tree pairs: applying the actions to a copy of
// src must reproduce dst exactly (interning makes that an id comparison).
func TestDiffScriptSoundnessFuzz(t *testing.T) {
	labels := []string{"a", "b", "c", "d"}

	Convey("Random tree pairs replay to the destination", t, func() {
		for seed := int64(0); seed < 40; seed++ {
			st := store.New()
			f := fuzz.New().RandSource(rand.NewSource(seed))

			var build func(depth int) store.NodeId
			build = func(depth int) store.NodeId {
				var n uint8
				f.Fuzz(&n)
				if depth >= 3 || n%5 == 0 {
					return expr(st, labels[int(n)%len(labels)])
				}
				arity := int(n%3) + 1
				children := make([]store.NodeId, 0, arity)
				for i := 0; i < arity; i++ {
					children = append(children, build(depth+1))
				}
				if n%4 == 1 {
					return iff(st, children...)
				}
				return block(st, children...)
			}

			src := build(0)
			dst := build(0)

			res := diff.Diff(st, src, dst, diff.DefaultConfig())
			So(res.Err, ShouldBeNil)

			got, err := diff.Apply(st, src, res.Actions)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, dst)

			// The mapping stays bijective.
			for d := 0; d < int(st.Resolve(dst).Size()); d++ {
				if s := res.Mapping.GetSrc(d); s >= 0 {
					So(res.Mapping.GetDst(s), ShouldEqual, d)
				}
			}
		}
	})
}
