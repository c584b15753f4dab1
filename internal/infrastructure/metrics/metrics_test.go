package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
)

func TestObservePosting(t *testing.T) {
	m := metrics.New(false)
	m.ObservePosting("post_shipment", "ok", 10*time.Millisecond)
	m.ObservePosting("post_shipment", "ok", 20*time.Millisecond)
	m.ObservePosting("post_shipment", "insufficient_stock", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PostingsTotal.WithLabelValues("post_shipment", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PostingsTotal.WithLabelValues("post_shipment", "insufficient_stock")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PostingDuration))
}

func TestHandlerExponeMetricas(t *testing.T) {
	m := metrics.New(true)
	m.ObserveHTTP("GET", "/health", "200", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `inventario_ledger_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
