package http_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
)

func testutilCount(t *testing.T, m *metrics.Metrics, op string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.PostingsTotal.WithLabelValues(op, "ok"))
}
