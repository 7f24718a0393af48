package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecorders(t *testing.T) {
	Convey("Given an installed manager", t, func() {
		m := NewManager()
		Install(m)
		Reset(func() { Install(nil) })

		Convey("When bouts are recorded per result", func() {
			RecordBoutJudged("A")
			RecordBoutJudged("A")
			RecordBoutJudged("tie")

			Convey("Then the counter splits by label", func() {
				So(testutil.ToFloat64(m.boutsJudged.WithLabelValues("A")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.boutsJudged.WithLabelValues("tie")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.boutsJudged.WithLabelValues("B")), ShouldEqual, 0)
			})
		})

		Convey("When knockout activity is recorded", func() {
			RecordElimination()
			RecordElimination()
			RecordRedistribution()
			RecordEntrantRemoved()
			UpdateEntrantsTracked(12)
			UpdateKnockoutRemaining(5)

			So(testutil.ToFloat64(m.eliminations), ShouldEqual, 2)
			So(testutil.ToFloat64(m.redistributions), ShouldEqual, 1)
			So(testutil.ToFloat64(m.entrantsRemoved), ShouldEqual, 1)
			So(testutil.ToFloat64(m.entrantsTracked), ShouldEqual, 12)
			So(testutil.ToFloat64(m.knockoutRemaining), ShouldEqual, 5)
		})

		Convey("Then the scrape handler is servable", func() {
			So(m.Handler(), ShouldNotBeNil)
		})
	})

	Convey("Given no installed manager", t, func() {
		Install(nil)

		Convey("Then every recorder is a safe no-op", func() {
			So(func() {
				RecordBoutJudged("A")
				RecordElimination()
				RecordRedistribution()
				RecordEntrantRemoved()
				UpdateEntrantsTracked(1)
				UpdateKnockoutRemaining(1)
			}, ShouldNotPanic)
		})
	})

	Convey("Given a disabled manager", t, func() {
		m := NewManager(WithMetricsEnabled(false))
		Install(m)
		Reset(func() { Install(nil) })

		Convey("Then recorders leave the collectors untouched", func() {
			RecordElimination()
			So(testutil.ToFloat64(m.eliminations), ShouldEqual, 0)
		})
	})
}

func TestOptions(t *testing.T) {
	Convey("Given naming options", t, func() {
		m := NewManager(WithNamespace("custom"), WithSubsystem("ranker"))

		Convey("Then collectors register under the custom names", func() {
			RecordBoutJudged("A") // not installed; must not touch m
			families, err := m.registry.Gather()
			So(err, ShouldBeNil)

			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(names, ShouldContain, "custom_ranker_eliminations_total")
		})
	})
}
