package metricsource

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const timeline = `
samples:
  - after: 0s
    reps: 2
    form_score: 80
  - after: 5ms
    reps: 3
    form_score: 90
    tempo: 1.2
  - after: 5ms
    fatigue: 0.4
`

func TestScript(t *testing.T) {
	Convey("Given a decoded timeline", t, func() {
		s, err := Decode(strings.NewReader(timeline))
		So(err, ShouldBeNil)
		So(s.Len(), ShouldEqual, 3)

		Convey("When it is replayed", func() {
			var reps int
			var n int
			var fatigue float64
			for sample := range s.Samples() {
				n++
				if sample.Reps != nil {
					reps += *sample.Reps
				}
				if sample.FatigueLevel != nil {
					fatigue = *sample.FatigueLevel
				}
			}

			Convey("Then every step arrives in order and the channel closes", func() {
				So(n, ShouldEqual, 3)
				So(reps, ShouldEqual, 5)
				So(fatigue, ShouldEqual, 0.4)
			})
		})

		Convey("When it is stopped early", func() {
			slow := NewScript([]Step{{After: time.Hour}})
			ch := slow.Samples()
			slow.Stop()
			slow.Stop()

			Convey("Then the channel closes without a sample", func() {
				_, ok := <-ch
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Invalid timelines are rejected", t, func() {
		_, err := Decode(strings.NewReader("samples:\n  - after: -1s\n"))
		So(err, ShouldWrap, ErrInvalidScript)

		_, err = Decode(strings.NewReader("samples:\n  - reps: -2\n"))
		So(err, ShouldWrap, ErrInvalidScript)

		_, err = Decode(strings.NewReader("samples: [oops"))
		So(err, ShouldWrap, ErrInvalidScript)

		_, err = Load("/does/not/exist.yaml")
		So(err, ShouldNotBeNil)
	})
}
