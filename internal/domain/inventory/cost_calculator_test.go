package inventory_test

import (
	"testing"

	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// 10 @ 5.00 + 5 @ 8.00 => (50 + 40) / 15 = 6.0000
func TestCostCalculator_PromedioPonderado(t *testing.T) {
	got := inventory.CostCalculator(d("10"), d("5.00"), d("5"), d("8.00"))
	assert.True(t, got.Equal(d("6")), "esperado 6, obtenido %s", got)
}

func TestCostCalculator_SinStockPrevioUsaCostoEntrada(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, d("99"), d("3"), d("7.25"))
	assert.True(t, got.Equal(d("7.25")))
}

func TestCostCalculator_StockNegativoSeTomaComoCero(t *testing.T) {
	got := inventory.CostCalculator(d("-4"), d("100"), d("2"), d("3"))
	assert.True(t, got.Equal(d("3")), "obtenido %s", got)
}

func TestCostCalculator_DenominadorCero(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, d("10"), decimal.Zero, d("4.5"))
	assert.True(t, got.Equal(d("4.5")))
}

func TestCostCalculator_RedondeaACuatroDecimales(t *testing.T) {
	// (1*1 + 2*2) / 3 = 1.66666...
	got := inventory.CostCalculator(d("1"), d("1"), d("2"), d("2"))
	assert.Equal(t, "1.6667", got.StringFixed(4))
	assert.True(t, got.Equal(d("1.6667")))
}
