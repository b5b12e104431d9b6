package request

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
	"bridgeid/pkg/platform/sentinel"
)

func newTestRequest(t *testing.T, hex string, createdAt time.Time) *models.Request {
	t.Helper()
	req, err := models.NewRequest(
		id.CorrelationID(common.HexToHash(hex)),
		models.Draft{SubjectID: 1, DID: "did:ethr:0x1", DestinationChain: "polygon"},
		models.ResponderConfig{CorrelationTag: []byte{1}, FeeAmount: big.NewInt(10)},
		createdAt,
	)
	require.NoError(t, err)
	return req
}

func TestInMemory_NextNonceIsMonotonic(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	first, err := store.NextNonce(ctx)
	require.NoError(t, err)
	second, err := store.NextNonce(ctx)
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestInMemory_CreateRefusesExistingID(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	req := newTestRequest(t, "0x01", time.Now())

	require.NoError(t, store.Create(ctx, req))
	err := store.Create(ctx, newTestRequest(t, "0x01", time.Now()))
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)

	exists, err := store.Exists(ctx, req.CorrelationID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInMemory_FindReturnsCopies(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	req := newTestRequest(t, "0x02", time.Now())
	require.NoError(t, store.Create(ctx, req))

	found, err := store.FindByID(ctx, req.CorrelationID)
	require.NoError(t, err)
	found.Status = models.RequestStatusFulfilled

	again, err := store.FindByID(ctx, req.CorrelationID)
	require.NoError(t, err)
	assert.True(t, again.IsPending())
}

func TestInMemory_UpdateKeepsFulfilledFinal(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	req := newTestRequest(t, "0x03", time.Now())
	require.NoError(t, store.Create(ctx, req))

	require.NoError(t, req.Fulfill(models.ResultVerified, common.Address{1}, time.Now()))
	require.NoError(t, store.Update(ctx, req))

	err := store.Update(ctx, req)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)

	_, err = store.FindByIDForUpdate(ctx, id.CorrelationID(common.HexToHash("0xff")))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, newTestRequest(t, "0xff", time.Now())), sentinel.ErrNotFound)
}

func TestInMemory_CountPendingCreatedBefore(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	old := newTestRequest(t, "0x04", base)
	fresh := newTestRequest(t, "0x05", base.Add(2*time.Hour))
	done := newTestRequest(t, "0x06", base)
	require.NoError(t, done.Fulfill(models.ResultUnverified, common.Address{1}, base))
	for _, r := range []*models.Request{old, fresh, done} {
		require.NoError(t, store.Create(ctx, r))
	}

	n, err := store.CountPendingCreatedBefore(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInMemory_DeletePending(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	pending := newTestRequest(t, "0x07", base)
	done := newTestRequest(t, "0x08", base)
	require.NoError(t, done.Fulfill(models.ResultVerified, common.Address{1}, base))
	require.NoError(t, store.Create(ctx, pending))
	require.NoError(t, store.Create(ctx, done))

	require.NoError(t, store.DeletePending(ctx, pending.CorrelationID))
	_, err := store.FindByID(ctx, pending.CorrelationID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.DeletePending(ctx, done.CorrelationID), sentinel.ErrInvalidState)
	_, err = store.FindByID(ctx, done.CorrelationID)
	assert.NoError(t, err)

	assert.ErrorIs(t, store.DeletePending(ctx, pending.CorrelationID), sentinel.ErrNotFound)
}
