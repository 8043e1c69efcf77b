package notify_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/notify"
)

func TestNewAlertMessage(t *testing.T) {
	created := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	product := &entity.Product{ID: "p1", Title: "Gorra", Slug: "gorra"}
	alert := &entity.StockAlert{
		ID: "a1", ProductID: "p1", Kind: entity.AlertLowStock,
		Message: "Gorra tiene stock bajo (3 restantes)", Threshold: 10, CreatedAt: created,
	}

	raw, err := json.Marshal(notify.NewAlertMessage(product, alert))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "a1", got["alert_id"])
	assert.Equal(t, "gorra", got["product_slug"])
	assert.Equal(t, "LOW_STOCK", got["alert_type"])
	assert.EqualValues(t, 10, got["threshold"])
	assert.Equal(t, "2026-05-02T08:00:00Z", got["created_at"])
}

func TestNewAlertMessage_SinProducto(t *testing.T) {
	msg := notify.NewAlertMessage(nil, &entity.StockAlert{ID: "a2", ProductID: "p9", Kind: entity.AlertOutOfStock})
	assert.Equal(t, "p9", msg.ProductID)
	assert.Empty(t, msg.ProductSlug)
}

func TestNewRedisNotifierWithClient_CanalPorDefecto(t *testing.T) {
	n := notify.NewRedisNotifierWithClient(nil, "", nil)
	assert.Equal(t, notify.DefaultChannel, n.Channel())
	assert.NoError(t, n.Close())
}
