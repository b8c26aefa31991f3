package errkind_test

import (
	"errors"
	"io"
	"testing"

	"github.com/okian/pulse/pkg/errkind"
	. "github.com/smartystreets/goconvey/convey"
)

var errBoom = errors.New("boom")

func TestWrapKind(t *testing.T) {
	Convey("Given a wrapped error", t, func() {
		err := errkind.WrapKind("store.save", errBoom, io.ErrUnexpectedEOF)

		Convey("Then it matches both the kind and the cause", func() {
			So(errors.Is(err, errBoom), ShouldBeTrue)
			So(errors.Is(err, io.ErrUnexpectedEOF), ShouldBeTrue)
		})

		Convey("And the message names the operation", func() {
			So(err.Error(), ShouldEqual, "store.save: boom: unexpected EOF")
		})
	})

	Convey("Given a kind without a cause", t, func() {
		err := errkind.NewKind("api.post", errBoom)

		So(errors.Is(err, errBoom), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.post: boom")

		var ke *errkind.Error
		So(errors.As(err, &ke), ShouldBeTrue)
		So(ke.Op, ShouldEqual, "api.post")
	})
}
