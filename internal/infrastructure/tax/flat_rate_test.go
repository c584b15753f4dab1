package tax_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/tax"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFlatRate_DefectoYExcepciones(t *testing.T) {
	calc, err := tax.FromConfig(config.TaxConfig{
		DefaultRate: d("0.19"),
		Overrides:   map[string]decimal.Decimal{"exento": d("0"), "reducido": d("5")},
	})
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		customer string
		subtotal string
		amount   string
		rate     string
	}{
		{"cualquiera", "200", "38", "0.19"},
		{"exento", "200", "0", "0"},
		{"reducido", "200", "10", "0.05"},
		{"cualquiera", "10.333", "1.96", "0.19"},
	}
	for _, tt := range tests {
		t.Run(tt.customer+"_"+tt.subtotal, func(t *testing.T) {
			res, err := calc.ComputeTax(ctx, tt.customer, d(tt.subtotal))
			require.NoError(t, err)
			assert.True(t, res.Amount.Equal(d(tt.amount)), "amount %s", res.Amount)
			assert.True(t, res.Rate.Equal(d(tt.rate)), "rate %s", res.Rate)
		})
	}
}

func TestFlatRate_Rechazos(t *testing.T) {
	_, err := tax.NewFlatRateCalculator(d("-0.1"), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = tax.NewFlatRateCalculator(d("0.19"), map[string]decimal.Decimal{"x": d("-1")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	calc, err := tax.NewFlatRateCalculator(d("0.19"), nil)
	require.NoError(t, err)
	_, err = calc.ComputeTax(context.Background(), "c", d("-1"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = calc.ComputeTax(ctx, "c", d("1"))
	assert.ErrorIs(t, err, context.Canceled)
}
