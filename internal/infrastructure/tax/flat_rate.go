package tax

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

var hundred = decimal.NewFromInt(100)

// FlatRateCalculator aplica una tarifa plana (IVA) por defecto y tarifas propias por cliente.
// Las tarifas mayores que 1 se interpretan como porcentaje (19 = 0.19).
type FlatRateCalculator struct {
	defaultRate decimal.Decimal
	overrides   map[string]decimal.Decimal
}

// NewFlatRateCalculator construye el calculador; rechaza tarifas negativas.
func NewFlatRateCalculator(defaultRate decimal.Decimal, overrides map[string]decimal.Decimal) (*FlatRateCalculator, error) {
	c := &FlatRateCalculator{defaultRate: normalize(defaultRate), overrides: make(map[string]decimal.Decimal, len(overrides))}
	if c.defaultRate.IsNegative() {
		return nil, domain.Validationf("tarifa de impuesto negativa: %s", defaultRate)
	}
	for customer, rate := range overrides {
		r := normalize(rate)
		if r.IsNegative() {
			return nil, domain.Validationf("tarifa de impuesto negativa para %s: %s", customer, rate)
		}
		c.overrides[customer] = r
	}
	return c, nil
}

// FromConfig construye el calculador desde la sección Tax.
func FromConfig(cfg config.TaxConfig) (*FlatRateCalculator, error) {
	return NewFlatRateCalculator(cfg.DefaultRate, cfg.Overrides)
}

func normalize(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(hundred)
	}
	return rate
}

// Rate tarifa aplicable al cliente.
func (c *FlatRateCalculator) Rate(customerID string) decimal.Decimal {
	if r, ok := c.overrides[customerID]; ok {
		return r
	}
	return c.defaultRate
}

// ComputeTax impuesto del subtotal redondeado a 2 decimales.
func (c *FlatRateCalculator) ComputeTax(ctx context.Context, customerID string, subtotal decimal.Decimal) (inventory.TaxResult, error) {
	if err := ctx.Err(); err != nil {
		return inventory.TaxResult{}, err
	}
	if subtotal.IsNegative() {
		return inventory.TaxResult{}, domain.Validationf("subtotal negativo: %s", subtotal)
	}
	rate := c.Rate(customerID)
	return inventory.TaxResult{Amount: subtotal.Mul(rate).Round(2), Rate: rate}, nil
}
