package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimall/medimall-backend/pkg/db/dbtest"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/metrics"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(dbtest.Open(t)),
		Metrics: metrics.NewCartMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return svc
}

func addItem(t *testing.T, svc Service, email string, qty *int) string {
	t.Helper()
	res, err := svc.Add(context.Background(), AddItemDTO{
		UserEmail:    email,
		MedicineID:   "med-1",
		MedicineName: "Paracetamol",
		PerUnitPrice: decimal.RequireFromString("4.50"),
		Quantity:     qty,
	})
	require.NoError(t, err)
	id, ok := res.InsertedID.(uuid.UUID)
	require.True(t, ok)
	return id.String()
}

func TestAddDefaultsQuantityAndDoesNotMerge(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	addItem(t, svc, "a@x.com", nil)
	addItem(t, svc, "a@x.com", nil)
	addItem(t, svc, "b@x.com", nil)

	items, err := svc.ListByOwner(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, 1, item.Quantity)
		assert.True(t, item.PerUnitPrice.Equal(decimal.RequireFromString("4.5")))
	}
}

func TestConcurrentAdjustmentsNeverLoseUpdates(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	start := 25
	id := addItem(t, svc, "a@x.com", &start)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		dir := DirectionIncrease
		if i%2 == 1 {
			dir = DirectionDecrease
		}
		wg.Add(1)
		go func(dir Direction) {
			defer wg.Done()
			if _, err := svc.Adjust(context.Background(), id, dir); err != nil {
				errs <- err
			}
		}(dir)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items, err := svc.ListByOwner(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, start, items[0].Quantity)
}

func TestDecreaseStopsAtZero(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	one := 1
	id := addItem(t, svc, "a@x.com", &one)

	res, err := svc.Adjust(ctx, id, DirectionDecrease)
	require.NoError(t, err)
	assert.Equal(t, AdjustResult{ModifiedCount: 1, Quantity: 0}, res)

	res, err = svc.Adjust(ctx, id, DirectionDecrease)
	require.NoError(t, err)
	assert.Equal(t, AdjustResult{ModifiedCount: 0, Quantity: 0}, res)

	res, err = svc.Adjust(ctx, id, DirectionIncrease)
	require.NoError(t, err)
	assert.Equal(t, AdjustResult{ModifiedCount: 1, Quantity: 1}, res)
}

func TestAdjustUnknownItem(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.Adjust(context.Background(), uuid.NewString(), DirectionIncrease)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.Adjust(context.Background(), "nope", DirectionIncrease)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	first := addItem(t, svc, "a@x.com", nil)
	addItem(t, svc, "a@x.com", nil)
	addItem(t, svc, "b@x.com", nil)

	res, err := svc.Remove(ctx, first)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.DeletedCount)

	cleared, err := svc.ClearByOwner(ctx, "A@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared.DeletedCount)

	others, err := svc.ListByOwner(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
