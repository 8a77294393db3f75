package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ey-luccas/luanova-sub000/internal/application/inventory"
)

func TestNotifyStockChanged_UnMensajePorEmpresa(t *testing.T) {
	h := NewHub(zerolog.Nop(), 4)
	now := time.Now()

	h.NotifyStockChanged(context.Background(), []inventory.StockChange{
		{CompanyID: "c1", ProductID: "p1", CurrentStock: decimal.NewFromInt(6), Reason: "sale", At: now},
		{CompanyID: "c2", ProductID: "p9", CurrentStock: decimal.NewFromInt(1), Reason: "movement", At: now},
		{CompanyID: "c1", ProductID: "p2", CurrentStock: decimal.NewFromInt(0), Reason: "sale", At: now},
	})

	require.Len(t, h.broadcast, 2)
	got := map[string]StockUpdateMessage{}
	for i := 0; i < 2; i++ {
		msg := <-h.broadcast
		var body StockUpdateMessage
		require.NoError(t, json.Unmarshal(msg.payload, &body))
		got[msg.companyID] = body
	}

	assert.Equal(t, MessageTypeStockUpdate, got["c1"].Type)
	require.Len(t, got["c1"].Changes, 2)
	assert.Equal(t, "p1", got["c1"].Changes[0].ProductID)
	assert.True(t, got["c1"].Changes[0].CurrentStock.Equal(decimal.NewFromInt(6)))
	require.Len(t, got["c2"].Changes, 1)
	assert.Equal(t, "p9", got["c2"].Changes[0].ProductID)
}

func TestNotifyStockChanged_ColaLlenaNoBloquea(t *testing.T) {
	h := NewHub(zerolog.Nop(), 1)
	change := []inventory.StockChange{{CompanyID: "c1", ProductID: "p1", CurrentStock: decimal.NewFromInt(1)}}

	done := make(chan struct{})
	go func() {
		h.NotifyStockChanged(context.Background(), change)
		h.NotifyStockChanged(context.Background(), change)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("NotifyStockChanged no debe bloquear con la cola llena")
	}
	assert.Len(t, h.broadcast, 1)
}

func TestNotifyStockChanged_SinCambiosNoEncola(t *testing.T) {
	h := NewHub(zerolog.Nop(), 4)
	h.NotifyStockChanged(context.Background(), nil)
	assert.Empty(t, h.broadcast)
}

// Tras apagar el hub, altas y bajas de handlers rezagados retornan sin bloquear.
func TestHub_TrasRunNoBloqueaAltasNiBajas(t *testing.T) {
	h := NewHub(zerolog.Nop(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()

	select {
	case <-h.done:
	case <-time.After(time.Second):
		t.Fatal("Run debe terminar al cancelar el contexto")
	}

	returned := make(chan bool)
	go func() {
		ok := h.add(registration{companyID: "c1"})
		h.remove(nil)
		returned <- ok
	}()
	select {
	case ok := <-returned:
		assert.False(t, ok, "el alta se rechaza con el hub detenido")
	case <-time.After(time.Second):
		t.Fatal("add/remove no deben bloquear tras la salida de Run")
	}
}
