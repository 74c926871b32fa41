package access

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	currentRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pprate_access_maxcontroller_current",
			Help: "Current number of estimation requests handled by the access maxcontroller.",
		},
	)
	rejectedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pprate_access_maxcontroller_rejected_total",
			Help: "Number of estimation requests rejected by the access maxcontroller.",
		},
	)
)

// MaxController bounds the number of estimations running at the same time.
// Estimations are CPU bound, so Max is usually a small multiple of the
// number of cores.
type MaxController struct {
	Max     int64
	Current int64
}

// Limit enforces the Concurrent Max limit while running the next handler.
func (c *MaxController) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt64(&c.Current, 1)
		currentRequests.Set(float64(cur))
		defer func() {
			cur := atomic.AddInt64(&c.Current, -1)
			currentRequests.Set(float64(cur))
		}()
		if c.Max > 0 && cur > c.Max {
			rejectedRequests.Inc()
			// 503 - https://tools.ietf.org/html/rfc7231#section-6.6.4
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}
