package inventory_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/inventory"
)

func TestClassify_Precedencia(t *testing.T) {
	cases := []struct {
		name      string
		stock     int
		threshold int
		want      inventory.StockStatus
	}{
		{"negativo gana a bajo", -3, 10, inventory.StatusNegative},
		{"cero es agotado", 0, 10, inventory.StatusOutOfStock},
		{"cero con umbral cero sigue agotado", 0, 0, inventory.StatusOutOfStock},
		{"bajo el umbral", 5, 10, inventory.StatusLow},
		{"igual al umbral no es bajo", 10, 10, inventory.StatusInStock},
		{"sobre el umbral", 50, 10, inventory.StatusInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.Classify(tc.stock, tc.threshold))
		})
	}
}

func TestAlertFor_UmbralRegistrado(t *testing.T) {
	p := &entity.Product{ID: "p1", Title: "Camiseta"}
	now := time.Now()

	neg := inventory.AlertFor(p, -3, 10, now)
	require.NotNil(t, neg)
	assert.Equal(t, entity.AlertNegativeStock, neg.Kind)
	assert.Equal(t, -3, neg.Threshold)
	assert.True(t, neg.Active)

	out := inventory.AlertFor(p, 0, 10, now)
	require.NotNil(t, out)
	assert.Equal(t, entity.AlertOutOfStock, out.Kind)
	assert.Equal(t, 0, out.Threshold)

	low := inventory.AlertFor(p, 5, 10, now)
	require.NotNil(t, low)
	assert.Equal(t, entity.AlertLowStock, low.Kind)
	assert.Equal(t, 10, low.Threshold, "LOW_STOCK registra el umbral configurado")
	assert.Contains(t, low.Message, "Camiseta")

	assert.Nil(t, inventory.AlertFor(p, 50, 10, now))
}

func TestNormalizeQuantity(t *testing.T) {
	assert.Equal(t, -5, inventory.NormalizeQuantity(entity.TransactionKindOUT, 5))
	assert.Equal(t, -5, inventory.NormalizeQuantity(entity.TransactionKindSALE, -5))
	assert.Equal(t, 5, inventory.NormalizeQuantity(entity.TransactionKindIN, -5))
	assert.Equal(t, 5, inventory.NormalizeQuantity(entity.TransactionKindRETURN, 5))
	assert.Equal(t, -5, inventory.NormalizeQuantity(entity.TransactionKindADJUSTMENT, -5))
	assert.Equal(t, 7, inventory.NormalizeQuantity(entity.TransactionKindADJUSTMENT, 7))
}

func TestRangos(t *testing.T) {
	assert.True(t, inventory.QuantityInRange(math.MaxInt32))
	assert.True(t, inventory.QuantityInRange(-math.MaxInt32))
	assert.False(t, inventory.QuantityInRange(math.MaxInt32+1))
	assert.False(t, inventory.QuantityInRange(math.MinInt64))

	assert.True(t, inventory.StockInRange(math.MinInt32))
	assert.False(t, inventory.StockInRange(math.MaxInt32+1))
	assert.False(t, inventory.StockInRange(math.MinInt32-1))
}
