package inventory

import "github.com/shopspring/decimal"

// CostPrecision decimales con los que se almacena el costo promedio de un ítem.
const CostPrecision int32 = 4

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockPrevio * CostoPrevio) + (CantEntrada * CostoEntrada)) / (StockPrevio + CantEntrada)
//
// StockPrevio se toma en cero si es negativo para no distorsionar el costo con stock en rojo.
// Si el denominador es cero, el nuevo costo es el costo de entrada. Resultado redondeado a 4 decimales.
func CostCalculator(stockPrevio, costoPrevio, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockPrevio.IsNegative() {
		stockPrevio = decimal.Zero
	}
	sum := stockPrevio.Add(cantEntrada)
	if sum.IsZero() {
		return costoEntrada.Round(CostPrecision)
	}
	num := stockPrevio.Mul(costoPrevio).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(CostPrecision)
}
