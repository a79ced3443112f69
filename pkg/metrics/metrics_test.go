package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func counterValue(c prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(g prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func histogramCount(o prometheus.Observer) uint64 {
	h, ok := o.(prometheus.Histogram)
	if !ok {
		return 0
	}
	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.RecordQuery("top_movies", OutcomeOK, 1, 3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_queries_total"], ShouldBeTrue)
				So(names["test_unit_query_duration_milliseconds"], ShouldBeTrue)
			})
		})

		Convey("When two managers share a registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording queries", func() {
			m.RecordQuery("recommend", OutcomeOK, 0.4, 3)
			m.RecordQuery("recommend", OutcomeOK, 0.2, 0)
			m.RecordQuery("recommend", OutcomeNoMatch, 0.1, 0)

			Convey("Then counts are kept per outcome", func() {
				So(counterValue(m.queries.WithLabelValues("recommend", OutcomeOK)), ShouldEqual, 2)
				So(counterValue(m.queries.WithLabelValues("recommend", OutcomeNoMatch)), ShouldEqual, 1)
			})

			Convey("And result sizes are observed only for answered queries", func() {
				So(histogramCount(m.resultSize.WithLabelValues("recommend")), ShouldEqual, 2)
				So(histogramCount(m.queryDuration.WithLabelValues("recommend")), ShouldEqual, 3)
			})
		})

		Convey("When publishing a snapshot", func() {
			m.UpdateSnapshot(10, 8, 40, 5, 1700000000)

			Convey("Then the gauges reflect it", func() {
				So(gaugeValue(m.snapshotMovies), ShouldEqual, 10)
				So(gaugeValue(m.snapshotRatedMovies), ShouldEqual, 8)
				So(gaugeValue(m.snapshotRatings), ShouldEqual, 40)
				So(gaugeValue(m.snapshotRaters), ShouldEqual, 5)
				So(gaugeValue(m.snapshotLastUnix), ShouldEqual, 1700000000)
			})
		})

		Convey("When recording a loader pass", func() {
			m.RecordLoad("ratings", 12, 2, 3.5)

			Convey("Then loaded and skipped are counted separately", func() {
				So(counterValue(m.loaderRecords.WithLabelValues("ratings", StatusLoaded)), ShouldEqual, 12)
				So(counterValue(m.loaderRecords.WithLabelValues("ratings", StatusSkipped)), ShouldEqual, 2)
			})
		})

		Convey("When recording HTTP, reload, error and system metrics", func() {
			m.RecordHTTPRequest("movies_top", "GET", "200", 1.2)
			m.RecordReload("ok")
			m.RecordError("loader", "open")
			m.UpdateSystem(2048, 7)

			Convey("Then every collector moves", func() {
				So(counterValue(m.httpRequests.WithLabelValues("movies_top", "GET", "200")), ShouldEqual, 1)
				So(counterValue(m.snapshotReloads.WithLabelValues("ok")), ShouldEqual, 1)
				So(counterValue(m.errorsByComponent.WithLabelValues("loader", "open")), ShouldEqual, 1)
				So(gaugeValue(m.systemMemoryUsage), ShouldEqual, 2048)
				So(gaugeValue(m.systemGoroutineCount), ShouldEqual, 7)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))

		Convey("Then recording is a no-op", func() {
			m.RecordQuery("top_genres", OutcomeOK, 1, 1)
			m.UpdateSnapshot(1, 1, 1, 1, 1)
			So(counterValue(m.queries.WithLabelValues("top_genres", OutcomeOK)), ShouldEqual, 0)
			So(gaugeValue(m.snapshotMovies), ShouldEqual, 0)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the package helpers do not panic", func() {
			So(func() {
				RecordQuery("top_movies", OutcomeOK, 0.1, 1)
				UpdateSnapshot(1, 1, 1, 1, 0)
				RecordReload("ok")
				RecordLoad("catalog", 1, 0, 0.1)
				RecordHTTPRequest("stats", "GET", "200", 0.1)
				RecordError("http", "server_error")
				UpdateSystem(1, 1)
			}, ShouldNotPanic)
		})

		Convey("And the registry gathers without error", func() {
			_, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
		})
	})
}
