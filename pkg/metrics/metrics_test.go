package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "courtquote")
				So(manager.subsystem, ShouldEqual, "quotations")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithAmountBuckets([]float64{1000, 10000}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.metricPrefix, ShouldEqual, "pfx")
				So(manager.amountBuckets, ShouldResemble, []float64{1000, 10000})
				So(manager.refreshInterval, ShouldEqual, 10*time.Second)
			})

			Convey("And metric names should carry the prefix", func() {
				manager.quotationsCreated.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_pfx_created_total")
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration should panic", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When a quotation is recorded", func() {
			before := testutil.ToFloat64(globalManager.quotationsCreated)
			RecordQuotationCreated(45500)

			Convey("Then the counter should advance by one", func() {
				So(testutil.ToFloat64(globalManager.quotationsCreated), ShouldEqual, before+1)
			})
		})

		Convey("When validation failures are recorded", func() {
			before := testutil.ToFloat64(globalManager.validationFailures.WithLabelValues("missing_sport"))
			RecordValidationFailure("missing_sport")
			RecordValidationFailure("missing_sport")

			Convey("Then they should be counted per kind", func() {
				So(testutil.ToFloat64(globalManager.validationFailures.WithLabelValues("missing_sport")), ShouldEqual, before+2)
			})
		})

		Convey("When gauges are updated", func() {
			UpdateStoredQuotations(12)
			UpdateDocumentCacheSize(3)
			UpdateQueueSize(7)

			Convey("Then they should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.storedQuotations), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.documentCacheSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
			})
		})

		Convey("When recording the remaining series", func() {
			Convey("Then nothing should panic", func() {
				So(func() {
					RecordNumberingRetry()
					RecordIdempotentReplay()
					RecordEstimateLatency(0.2)
					RecordPersistenceLatency("insert", 3)
					RecordPersistenceFailure("insert")
					RecordRenderLatency("pdf", 25)
					RecordRenderError("xlsx")
					RecordHTTPRequest("quotations", "POST", "201")
					RecordHTTPRequestDuration("quotations", "POST", "201", 4)
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.07)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(0)
					UpdateWorkerActiveCount(4)
					UpdateWorkerMessagesPerSecond(1.5)
					RecordWorkerProcessingLatency(30)
					RecordWorkerError()
					RecordErrorByComponent("store", "timeout")
					RecordErrorByType("timeout", "high")
					RecordErrorByEndpoint("quotations", "POST", "server_error")
					RecordErrorLatency("http", "server_error", 12)
					UpdateSystemMemoryUsage(1024 * 1024)
					UpdateSystemGoroutineCount(42)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When fetching the registry", func() {
			Convey("Then it should be the custom registry", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
