package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ey-luccas/luanova-sub000/internal/domain/inventory"
)

func TestWeightedAverageCost_PromedioPonderado(t *testing.T) {
	// (10×5 + 30×9) / 40 = 8
	got := inventory.WeightedAverageCost(dec(10), decPtr(5), dec(30), dec(9))
	assert.True(t, got.Equal(dec(8)), "costo = %s", got)
}

func TestWeightedAverageCost_SinStockPrevioTomaElCostoDeEntrada(t *testing.T) {
	got := inventory.WeightedAverageCost(dec(0), decPtr(100), dec(4), dec(7))
	assert.True(t, got.Equal(dec(7)))
}

func TestWeightedAverageCost_SinCostoPrevioTomaElCostoDeEntrada(t *testing.T) {
	got := inventory.WeightedAverageCost(dec(10), nil, dec(2), dec(3))
	assert.True(t, got.Equal(dec(3)))
}

func TestWeightedAverageCost_RedondeaACuatroDecimales(t *testing.T) {
	// (1×1 + 2×2) / 3 = 1.6666…
	got := inventory.WeightedAverageCost(dec(1), decPtr(1), dec(2), dec(2))
	assert.Equal(t, "1.6667", got.String())
}

func TestWeightedAverageCost_SumaCeroDevuelveCero(t *testing.T) {
	got := inventory.WeightedAverageCost(dec(0), decPtr(5), dec(0), dec(9))
	assert.True(t, got.IsZero())
}
