package scoring_test

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/okian/pulse/internal/domain/scoring"
	"github.com/okian/pulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given the default normalizer", t, func() {
		n := scoring.NewNormalizer()

		Convey("When scoring a senior height of 170cm", func() {
			res, err := n.Normalize(types.TestHeight, 170, types.AgeSenior)

			Convey("Then it lands on the average anchor", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 60)
				So(res.Rating, ShouldEqual, scoring.RatingAverage)
				So(res.Percentile, ShouldEqual, 50)
				So(res.Approximate, ShouldBeFalse)
				So(res.AgeGroup, ShouldEqual, types.AgeSenior)
			})
		})

		Convey("When scoring 20 senior sit-ups", func() {
			res, err := n.Normalize(types.TestSitUps, 20, types.AgeSenior)
			So(err, ShouldBeNil)
			So(res.Score, ShouldEqual, 45)
			So(res.Rating, ShouldEqual, scoring.RatingPoor)
		})

		Convey("When scoring shuttle runs against the agility bands", func() {
			excellent, _ := n.Normalize(types.TestShuttleRun, 8.5, types.AgeSenior)
			good, _ := n.Normalize(types.TestShuttleRun, 10, types.AgeSenior)
			slow, _ := n.Normalize(types.TestShuttleRun, 30, types.AgeSenior)
			So(excellent.Rating, ShouldEqual, scoring.RatingExcellent)
			So(good.Score, ShouldEqual, 80)
			So(slow.Score, ShouldEqual, 0)
		})

		Convey("When the measurement is outside the sane range", func() {
			for _, raw := range []float64{0, -5, 400, math.NaN(), math.Inf(1)} {
				_, err := n.Normalize(types.TestHeight, raw, types.AgeSenior)
				So(errors.Is(err, scoring.ErrMeasurementOutOfRange), ShouldBeTrue)

				var oor *scoring.MeasurementOutOfRangeError
				So(errors.As(err, &oor), ShouldBeTrue)
				So(oor.TestType, ShouldEqual, types.TestHeight)
			}
		})

		Convey("When the test type is unknown", func() {
			_, err := n.Normalize(types.TestType("PLANK"), 10, types.AgeSenior)
			So(errors.Is(err, scoring.ErrUnknownTestType), ShouldBeTrue)
		})
	})
}

func TestNormalizeFallback(t *testing.T) {
	Convey("Given brackets without reference data", t, func() {
		n := scoring.NewNormalizer()

		Convey("When a U16 athlete is scored", func() {
			res, err := n.Normalize(types.TestSitUps, 20, types.AgeU16)

			Convey("Then the nearest bracket is used and marked approximate", func() {
				So(err, ShouldBeNil)
				So(res.Approximate, ShouldBeTrue)
				So(res.AgeGroup, ShouldEqual, types.AgeU14)
			})
		})

		Convey("When two brackets are equally near", func() {
			// Shuttle data exists for U6 and U14; U10 sits between them.
			res, err := n.Normalize(types.TestShuttleRun, 15, types.AgeU10)
			So(err, ShouldBeNil)
			So(res.AgeGroup, ShouldEqual, types.AgeU6)
			So(res.Approximate, ShouldBeTrue)
		})

		Convey("When a bracket is removed by option", func() {
			trimmed := scoring.NewNormalizer(scoring.WithoutBracket(types.AgeSenior))
			res, err := trimmed.Normalize(types.TestHeight, 170, types.AgeSenior)
			So(err, ShouldBeNil)
			So(res.Approximate, ShouldBeTrue)
			So(res.AgeGroup, ShouldEqual, types.AgeU14)
		})
	})
}

func TestNormalizeOptions(t *testing.T) {
	Convey("Given custom reference data", t, func() {
		n := scoring.NewNormalizer(
			scoring.WithRange(types.TestSitUps, 1, 60),
			scoring.WithAnchors(types.TestSitUps, types.AgeU20, scoring.Anchors{Floor: 10, Average: 20, Good: 30, Excellent: 40}),
			scoring.WithPercentiles(types.TestSitUps, types.AgeU20, []scoring.Point{{Raw: 10, Percentile: 10}, {Raw: 40, Percentile: 90}}),
		)

		r, ok := n.Range(types.TestSitUps)
		So(ok, ShouldBeTrue)
		So(r.Max, ShouldEqual, 60)

		_, err := n.Normalize(types.TestSitUps, 70, types.AgeU20)
		So(errors.Is(err, scoring.ErrMeasurementOutOfRange), ShouldBeTrue)

		res, err := n.Normalize(types.TestSitUps, 25, types.AgeU20)
		So(err, ShouldBeNil)
		So(res.Score, ShouldEqual, 70)
		So(res.Percentile, ShouldEqual, 50)
		So(res.Approximate, ShouldBeFalse)
	})
}

func TestNormalizeProperties(t *testing.T) {
	Convey("Given random valid measurements for every test type", t, func() {
		n := scoring.NewNormalizer()
		faker := gofakeit.New(7)

		for _, tt := range types.TestTypes {
			r, ok := n.Range(tt)
			So(ok, ShouldBeTrue)

			for _, g := range types.AgeGroups {
				raws := make([]float64, 40)
				for i := range raws {
					raws[i] = faker.Float64Range(r.Min, r.Max)
				}
				sort.Float64s(raws)

				prev := -1.0
				for i, raw := range raws {
					res, err := n.Normalize(tt, raw, g)
					So(err, ShouldBeNil)
					So(res.Score, ShouldBeBetweenOrEqual, 0, 100)
					So(res.Percentile, ShouldBeBetweenOrEqual, 0, 100)

					if i > 0 {
						if tt.LowerIsBetter() {
							So(res.Score, ShouldBeLessThanOrEqualTo, prev)
						} else {
							So(res.Score, ShouldBeGreaterThanOrEqualTo, prev)
						}
					}
					prev = res.Score
				}
			}
		}
	})

	Convey("Given a repeated input", t, func() {
		n := scoring.NewNormalizer()
		a, _ := n.Normalize(types.TestSprint30m, 5.2, types.AgeU18)
		b, _ := n.Normalize(types.TestSprint30m, 5.2, types.AgeU18)
		So(a, ShouldResemble, b)
	})
}
