package opt_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	. "github.com/flier/astdiff/pkg/opt"
)

func TestOption(t *testing.T) {
	Convey("Given a new option", t, func() {
		some := Some(123)

		Convey("It should have some value", func() {
			So(some.IsSome(), ShouldBeTrue)
			So(some.IsNone(), ShouldBeFalse)
			So(some.String(), ShouldEqual, "Some(123)")

			v, ok := some.Get()
			So(v, ShouldEqual, 123)
			So(ok, ShouldBeTrue)

			So(some.Expect("some value"), ShouldEqual, 123)
			So(some.Unwrap(), ShouldEqual, 123)
			So(some.UnwrapOr(456), ShouldEqual, 123)
			So(some.UnwrapOrDefault(), ShouldEqual, 123)

			So(Wrap(123, true), ShouldResemble, some)
		})

		none := None[int]()

		Convey("It should have no value", func() {
			So(none.IsSome(), ShouldBeFalse)
			So(none.IsNone(), ShouldBeTrue)
			So(none.String(), ShouldEqual, "None")

			_, ok := none.Get()
			So(ok, ShouldBeFalse)

			So(func() { none.Unwrap() }, ShouldPanic)
			So(none.UnwrapOr(456), ShouldEqual, 456)
			So(none.UnwrapOrDefault(), ShouldEqual, 0)

			So(Wrap(123, false), ShouldResemble, none)
		})

		Convey("Options over comparable types compare by value", func() {
			So(Some(1) == Some(1), ShouldBeTrue)
			So(Some(1) == Some(2), ShouldBeFalse)
			So(Some(0) == None[int](), ShouldBeFalse)
		})
	})
}
