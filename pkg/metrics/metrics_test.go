package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it registers its collectors there", func() {
				So(manager, ShouldNotBeNil)
				manager.storedPlayers.Set(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "sub")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When empty options are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "roster")
				So(manager.subsystem, ShouldEqual, "players")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording player operations", func() {
			before := testutil.ToFloat64(globalManager.playerOperations.WithLabelValues("create", "ok"))
			RecordPlayerOperation("create", "ok")
			RecordPlayerOperation("create", "ok")

			Convey("Then the counter grows", func() {
				after := testutil.ToFloat64(globalManager.playerOperations.WithLabelValues("create", "ok"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording validation failures", func() {
			before := testutil.ToFloat64(globalManager.validationFailure.WithLabelValues("name"))
			RecordValidationFailure("name")

			Convey("Then the field counter grows", func() {
				So(testutil.ToFloat64(globalManager.validationFailure.WithLabelValues("name"))-before, ShouldEqual, 1)
			})
		})

		Convey("When updating the stored players gauge", func() {
			UpdateStoredPlayers(42)

			Convey("Then it reflects the last value", func() {
				So(testutil.ToFloat64(globalManager.storedPlayers), ShouldEqual, 42)
			})
		})

		Convey("When recording latencies and errors", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordOperationLatency("list", 1.5)
					RecordRepositoryQueryLatency("memory", 0.2)
					RecordRepositoryWriteLatency("sql", 3)
					RecordHTTPRequest("players.list", "GET", "200")
					RecordHTTPRequestDuration("players.list", "GET", "200", 4)
					RecordErrorByComponent("repository", "not_found")
					RecordErrorByType("client_error", "medium")
					RecordErrorByEndpoint("players.get", "GET", "not_found")
					UpdateSystemMemoryUsage(1024)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then roster metrics are exposed", func() {
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["roster_players_stored"], ShouldBeTrue)
			})
		})
	})
}
