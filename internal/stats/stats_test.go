package stats

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWilson(t *testing.T) {
	Convey("Given the Wilson score interval", t, func() {
		Convey("A zero total is degenerate", func() {
			So(Wilson(0, 0), ShouldResemble, Interval{})
		})

		Convey("One win out of one clamps the upper bound", func() {
			ci := Wilson(1, 1)
			So(ci.Lower, ShouldAlmostEqual, 0.2065, 0.001)
			So(ci.Center, ShouldAlmostEqual, 0.6033, 0.001)
			So(ci.Upper, ShouldEqual, 1.0)
		})

		Convey("Bounds are ordered for every wins <= total", func() {
			for total := 0; total <= 60; total++ {
				for wins := 0; wins <= total; wins++ {
					ci := Wilson(wins, total)
					So(ci.Lower, ShouldBeGreaterThanOrEqualTo, 0)
					So(ci.Lower, ShouldBeLessThanOrEqualTo, ci.Center)
					So(ci.Center, ShouldBeLessThanOrEqualTo, ci.Upper)
					So(ci.Upper, ShouldBeLessThanOrEqualTo, 1)
				}
			}
		})

		Convey("A wider z gives a wider interval", func() {
			narrow := WilsonZ(12, 40, 1.0)
			wide := WilsonZ(12, 40, 2.58)
			So(wide.Upper-wide.Lower, ShouldBeGreaterThan, narrow.Upper-narrow.Lower)
		})
	})
}

func TestClassifyTier(t *testing.T) {
	Convey("Given a minimum sample of 10", t, func() {
		So(ClassifyTier(9, 10), ShouldEqual, TierInsufficient)
		So(ClassifyTier(15, 10), ShouldEqual, TierLow)
		So(ClassifyTier(30, 10), ShouldEqual, TierHigh)

		Convey("The tier never decreases as the total grows", func() {
			rank := map[Tier]int{TierInsufficient: 0, TierLow: 1, TierHigh: 2}
			prev := TierInsufficient
			for n := 0; n < 100; n++ {
				cur := ClassifyTier(n, 10)
				So(rank[cur], ShouldBeGreaterThanOrEqualTo, rank[prev])
				prev = cur
			}
		})

		Convey("A custom high cutoff is honoured", func() {
			So(Tiers{High: 50}.Classify(30, 10), ShouldEqual, TierLow)
			So(Tiers{High: 50}.Classify(50, 10), ShouldEqual, TierHigh)
		})
	})
}

func TestShrinkage(t *testing.T) {
	Convey("Given the shrinkage constant 50", t, func() {
		So(Shrink(0.10, 50, DefaultShrinkK), ShouldAlmostEqual, 0.05, 1e-12)
		So(Shrink(0.10, 0, DefaultShrinkK), ShouldEqual, 0)

		Convey("The composite is nil below the evidence minimum", func() {
			items := []Evidence{{Eff: Float(0.2), N: 100}, {Eff: Float(-0.1), N: 100}}
			So(ShrunkComposite(items, DefaultShrinkK, 300), ShouldBeNil)
		})

		Convey("Items without effectiveness are excluded from the denominator", func() {
			items := []Evidence{{Eff: Float(0.2), N: 150}, {Eff: nil, N: 1000}, {Eff: Float(0.2), N: 150}}
			got := ShrunkComposite(items, DefaultShrinkK, 300)
			So(got, ShouldNotBeNil)
			So(*got, ShouldAlmostEqual, 0.2*150.0/200.0, 1e-12)
		})

		Convey("High-volume patterns dominate the composite", func() {
			items := []Evidence{{Eff: Float(0.5), N: 5}, {Eff: Float(0.0), N: 500}}
			got := ShrunkComposite(items, DefaultShrinkK, 50)
			So(got, ShouldNotBeNil)
			So(math.Abs(*got), ShouldBeLessThan, 0.01)
		})
	})
}

func TestPercentile(t *testing.T) {
	Convey("Given the distribution 10..50", t, func() {
		dist := []*float64{Float(40), Float(10), nil, Float(30), Float(50), Float(20)}

		Convey("The median value scores 50 either way", func() {
			So(*Percentile(Float(30), dist, false), ShouldEqual, 50)
			So(*Percentile(Float(30), dist, true), ShouldEqual, 50)
		})

		Convey("Ties at the minimum count half", func() {
			So(*Percentile(Float(10), dist, false), ShouldEqual, 10)
		})

		Convey("Values outside the range clamp", func() {
			So(*Percentile(Float(5), dist, false), ShouldEqual, 0)
			So(*Percentile(Float(99), dist, false), ShouldEqual, 100)
			So(*Percentile(Float(99), dist, true), ShouldEqual, 0)
		})

		Convey("A missing value stays missing", func() {
			So(Percentile(nil, dist, false), ShouldBeNil)
		})

		Convey("An empty distribution is neutral", func() {
			So(*Percentile(Float(3), nil, false), ShouldEqual, NeutralPercentile)
			So(*Percentile(Float(3), []*float64{nil}, true), ShouldEqual, NeutralPercentile)
		})
	})
}
