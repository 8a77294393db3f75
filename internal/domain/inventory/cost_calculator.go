package inventory

import "github.com/shopspring/decimal"

// CostScale decimales con que se persiste el costo (NUMERIC(18,4)).
const CostScale = 4

// WeightedAverageCost costo promedio ponderado del producto después de una entrada:
//
//	(stock × costoActual + entrada × costoEntrada) / (stock + entrada)
//
// Sin costo previo o sin existencias, el costo de la entrada se toma tal cual.
func WeightedAverageCost(stock decimal.Decimal, currentCost *decimal.Decimal, inQty, inCost decimal.Decimal) decimal.Decimal {
	total := stock.Add(inQty)
	if !total.IsPositive() {
		return decimal.Zero
	}
	if currentCost == nil || !stock.IsPositive() {
		return inCost.Round(CostScale)
	}
	value := stock.Mul(*currentCost).Add(inQty.Mul(inCost))
	return value.DivRound(total, CostScale)
}
