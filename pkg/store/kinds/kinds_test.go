package kinds_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/astdiff/pkg/store/kinds"
)

func TestKinds(t *testing.T) {
	Convey("Given the built-in alphabet", t, func() {
		Convey("Predicates follow the registered flags", func() {
			So(kinds.Spaces.IsSpaces(), ShouldBeTrue)
			So(kinds.Spaces.IsHidden(), ShouldBeTrue)
			So(kinds.Spaces.IsStatement(), ShouldBeFalse)

			So(kinds.If.IsStatement(), ShouldBeTrue)
			So(kinds.If.IsBranch(), ShouldBeTrue)
			So(kinds.If.IsSpaces(), ShouldBeFalse)

			So(kinds.Block.IsStatement(), ShouldBeFalse)
			So(kinds.Expr.IsComment(), ShouldBeFalse)
		})

		Convey("Classification is shared across languages", func() {
			So(kinds.If.Class(), ShouldEqual, kinds.ClassBranch)
			So(kinds.Expr.Class(), ShouldEqual, kinds.ClassOther)
			So(kinds.ClassBranch.String(), ShouldEqual, "branch")
		})

		Convey("Names round-trip", func() {
			So(kinds.If.Name(), ShouldEqual, "if_statement")
			So(kinds.Block.String(), ShouldEqual, "block")
		})
	})

	Convey("Given a freshly registered kind", t, func() {
		k := kinds.Register("comment", kinds.FlagComment, kinds.ClassComment)

		Convey("It extends the alphabet", func() {
			So(k.IsComment(), ShouldBeTrue)
			So(k.Class(), ShouldEqual, kinds.ClassComment)
			So(k.Name(), ShouldEqual, "comment")
		})
	})
}
