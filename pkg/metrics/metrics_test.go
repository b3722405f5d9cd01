package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		m := NewManager(WithNamespace("test"), WithSubsystem("unit"))

		Convey("Export results are counted by label", func() {
			m.ExportPlayer(true)
			m.ExportPlayer(true)
			m.ExportPlayer(false)
			So(testutil.ToFloat64(m.exportPlayers.WithLabelValues("ok")), ShouldEqual, 2)
			So(testutil.ToFloat64(m.exportPlayers.WithLabelValues("failed")), ShouldEqual, 1)
		})

		Convey("Skipped rows ignore non-positive counts", func() {
			m.RowsSkipped("shots", 3)
			m.RowsSkipped("shots", 0)
			So(testutil.ToFloat64(m.rowsSkipped.WithLabelValues("shots")), ShouldEqual, 3)
		})

		Convey("Distribution refreshes set the player gauge", func() {
			m.DistributionRefreshed(120)
			So(testutil.ToFloat64(m.distributionRefreshes), ShouldEqual, 1)
			So(testutil.ToFloat64(m.distributionPlayers), ShouldEqual, 120)
		})

		Convey("The handler exposes recorded HTTP requests", func() {
			m.ObserveHTTPRequest("/api/players", http.MethodGet, 200, 5*time.Millisecond)

			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.Contains(rec.Body.String(), `test_unit_http_requests_total{method="GET",route="/api/players",status_code="200"} 1`), ShouldBeTrue)
		})
	})

	Convey("Given a disabled manager", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithRegistry(reg), WithMetricsEnabled(false))
		m.ExportPlayer(true)
		So(testutil.ToFloat64(m.exportPlayers.WithLabelValues("ok")), ShouldEqual, 0)
		So(m.Registry(), ShouldEqual, reg)
	})
}
