package store_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/astdiff/pkg/opt"
	"github.com/flier/astdiff/pkg/store"
	"github.com/flier/astdiff/pkg/store/kinds"
)

func TestBuilder(t *testing.T) {
	Convey("Given a builder over an empty store", t, func() {
		st := store.New()
		b := store.NewBuilder(st)

		Convey("Events assemble the same tree as direct inserts", func() {
			b.Open(kinds.If)
			b.Open(kinds.Expr)
			b.Label("cond")
			b.Close()
			b.Open(kinds.Block)
			b.Open(kinds.Expr)
			b.Label("body")
			b.Close()
			b.Close()
			root := b.Finish()

			want := st.Insert(kinds.If, nilLabel(), []store.NodeId{
				expr(st, "cond"),
				block(st, expr(st, "body")),
			})
			So(root, ShouldEqual, want)
		})

		Convey("Finish closes nodes left open", func() {
			b.Open(kinds.Block)
			b.Open(kinds.Expr)
			b.Label("x")
			root := b.Finish()

			So(root, ShouldEqual, block(st, expr(st, "x")))
		})

		Convey("The builder is reusable", func() {
			b.Open(kinds.Expr)
			b.Label("a")
			first := b.Finish()

			b.Open(kinds.Expr)
			b.Label("a")
			second := b.Finish()

			So(second, ShouldEqual, first)
		})

		Convey("Labels resolve through the node view", func() {
			b.Open(kinds.Expr)
			b.Label("hello")
			id := b.Finish()

			r := st.Resolve(id)
			So(r.HasLabel(), ShouldBeTrue)
			So(r.LabelString(), ShouldEqual, "hello")
			So(r.Kind(), ShouldEqual, kinds.Expr)
		})
	})
}

func nilLabel() opt.Option[store.LabelId] { return opt.None[store.LabelId]() }
