package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wanderlust-service/pkg/logger"
	"wanderlust-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func testOptions(baseURL string) Options {
	return Options{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		Metrics: metrics.NewMetrics("test", prometheus.NewRegistry()),
		Logger:  logger.NewNopLogger(),
	}
}

// serve answers every request with body and records the last request
func serve(t *testing.T, status int, body string, last **http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if last != nil {
			*last = r
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}
