package battle

import (
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHead(t *testing.T) {
	Convey("Given replies logged after a parse mismatch", t, func() {
		Convey("When the first line is short", func() {
			So(head("winner unclear\nrest"), ShouldEqual, "winner unclear")
		})

		Convey("When a multi-byte rune straddles the cap", func() {
			line := strings.Repeat("a", headLen-1) + "é" + "tail"
			got := head(line)

			Convey("Then the cut lands on a rune boundary", func() {
				So(utf8.ValidString(got), ShouldBeTrue)
				So(got, ShouldEqual, strings.Repeat("a", headLen-1))
			})
		})

		Convey("When the line is all multi-byte runes", func() {
			got := head(strings.Repeat("界", 60))

			Convey("Then the result stays valid and within the cap", func() {
				So(utf8.ValidString(got), ShouldBeTrue)
				So(len(got), ShouldBeLessThanOrEqualTo, headLen)
				So(got, ShouldEqual, strings.Repeat("界", headLen/3))
			})
		})
	})
}
