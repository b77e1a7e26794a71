package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdex/paperdex/pkg/common"
	"github.com/paperdex/paperdex/pkg/utility/fixed"
)

func TestBusRouter_PostAndDispatch(t *testing.T) {
	router := NewRouter(16)

	received := make(chan common.Balance, 1)
	router.BalanceHandler = func(_ context.Context, balance common.Balance) {
		received <- balance
	}

	ctx, cancel := context.WithCancel(context.Background())
	go router.Exec(ctx)

	require.NoError(t, router.Post(BalanceEvent, common.Balance{Value: fixed.FromInt(1000, 0)}))

	select {
	case balance := <-received:
		assert.True(t, balance.Value.Eq(fixed.FromInt(1000, 0)))
	case <-time.After(time.Second):
		t.Fatal("balance event was not dispatched")
	}

	cancel()
	select {
	case err := <-router.Done():
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("router did not stop")
	}
}

func TestBusRouter_CapacityReached(t *testing.T) {
	router := NewRouter(1)

	require.NoError(t, router.Post(BalanceEvent, common.Balance{}))
	assert.Error(t, router.Post(BalanceEvent, common.Balance{}))
}

func TestBusRouter_NilHandlerDropsEvent(t *testing.T) {
	router := NewRouter(4)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, router.Post(TradeCloseEvent, common.TradeRecord{}))
	router.Exec(ctx)

	assert.Equal(t, uint64(1), router.dispatchCount)
	assert.Equal(t, uint64(0), router.dispatchFails)
}

func TestBusRouter_InvalidPayload(t *testing.T) {
	router := NewRouter(4)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, router.Post(BalanceEvent, "not a balance"))
	router.Exec(ctx)

	assert.Equal(t, uint64(1), router.dispatchFails)
}

func TestBusRouter_MergeHandlers(t *testing.T) {
	var calls int
	h := MergeHandlers(
		func(context.Context, common.TradeRecord) { calls++ },
		func(context.Context, common.TradeRecord) { calls++ },
	)
	h(context.Background(), common.TradeRecord{})
	assert.Equal(t, 2, calls)
}
