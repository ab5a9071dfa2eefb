package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PauloCosta30/flight-alert-bot/pkg/model"
	"github.com/PauloCosta30/flight-alert-bot/pkg/storage"
)

func newTestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newAlert(ownerID int64) *model.Alert {
	return &model.Alert{
		OwnerID:  ownerID,
		Origin:   "GRU",
		MaxPrice: 500,
		DateSpec: model.DateSpec{Start: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		TripType: model.TripOneWay,
	}
}

func TestSQLite_CreateAlert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alert := newAlert(42)
	alert.Destination = "SSA"

	err := db.CreateAlert(ctx, alert)
	require.NoError(t, err)
	assert.NotEmpty(t, alert.ID)
	assert.False(t, alert.CreatedAt.IsZero())
	assert.Equal(t, model.StatusActive, alert.Status)

	got, err := db.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.OwnerID)
	assert.Equal(t, "GRU", got.Origin)
	assert.Equal(t, "SSA", got.Destination)
	assert.InDelta(t, 500.0, got.MaxPrice, 0.001)
	assert.Equal(t, model.TripOneWay, got.TripType)
	assert.Nil(t, got.LastNotifiedPrice)
	assert.True(t, got.LastCheckedAt.IsZero())
}

func TestSQLite_CreateAlert_DuplicateID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alert := newAlert(1)
	require.NoError(t, db.CreateAlert(ctx, alert))

	dup := newAlert(1)
	dup.ID = alert.ID
	err := db.CreateAlert(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrDuplicateID)
}

func TestSQLite_CreateAlert_Invalid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alert := newAlert(1)
	alert.MaxPrice = -10
	err := db.CreateAlert(ctx, alert)
	assert.Error(t, err)
}

func TestSQLite_GetAlert_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetAlert(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLite_ListByOwner_CreationOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var ids []string
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		a := newAlert(7)
		a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.CreateAlert(ctx, a))
		ids = append(ids, a.ID)
	}
	require.NoError(t, db.CreateAlert(ctx, newAlert(8))) // another owner

	alerts, err := db.ListByOwner(ctx, 7)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	for i, a := range alerts {
		assert.Equal(t, ids[i], a.ID)
	}
}

func TestSQLite_ListActive_ExcludesInactive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	active := newAlert(1)
	paused := newAlert(1)
	cancelled := newAlert(1)
	for _, a := range []*model.Alert{active, paused, cancelled} {
		require.NoError(t, db.CreateAlert(ctx, a))
	}
	require.NoError(t, db.SetStatus(ctx, paused.ID, model.StatusPaused))
	require.NoError(t, db.SetStatus(ctx, cancelled.ID, model.StatusCancelled))

	alerts, err := db.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, active.ID, alerts[0].ID)

	// Cancellation is a tombstone: the record stays queryable by owner.
	all, err := db.ListByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLite_UpdateAlert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alert := newAlert(1)
	require.NoError(t, db.CreateAlert(ctx, alert))

	price := 480.0
	at := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	alert.Status = model.StatusPaused
	alert.LastCheckedAt = at
	alert.LastNotifiedPrice = &price
	alert.LastNotifiedAt = &at
	require.NoError(t, db.UpdateAlert(ctx, alert))

	got, err := db.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaused, got.Status)
	require.NotNil(t, got.LastNotifiedPrice)
	assert.InDelta(t, 480.0, *got.LastNotifiedPrice, 0.001)
	require.NotNil(t, got.LastNotifiedAt)
	assert.True(t, got.LastNotifiedAt.Equal(at))
}

func TestSQLite_UpdateAlert_NotFound(t *testing.T) {
	db := newTestDB(t)

	ghost := newAlert(1)
	ghost.ID = "ghost"
	ghost.Status = model.StatusActive
	err := db.UpdateAlert(context.Background(), ghost)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLite_SetStatus_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.SetStatus(context.Background(), "missing", model.StatusCancelled)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLite_MarkChecked(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alert := newAlert(1)
	require.NoError(t, db.CreateAlert(ctx, alert))

	at := time.Date(2026, 1, 3, 9, 30, 0, 0, time.UTC)
	require.NoError(t, db.MarkChecked(ctx, alert.ID, at))

	got, err := db.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, got.LastCheckedAt.Equal(at))
}

func TestSQLite_RecordNotification(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alert := newAlert(1)
	require.NoError(t, db.CreateAlert(ctx, alert))

	at := time.Date(2026, 1, 3, 9, 30, 0, 0, time.UTC)
	require.NoError(t, db.RecordNotification(ctx, alert.ID, 480, at))

	got, err := db.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastNotifiedPrice)
	assert.InDelta(t, 480.0, *got.LastNotifiedPrice, 0.001)
	require.NotNil(t, got.LastNotifiedAt)
	assert.True(t, got.LastNotifiedAt.Equal(at))
}

func TestSQLite_DateRangeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alert := newAlert(1)
	alert.TripType = model.TripRoundTrip
	alert.DateSpec.End = alert.DateSpec.Start.AddDate(0, 0, 10)
	require.NoError(t, db.CreateAlert(ctx, alert))

	got, err := db.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, got.DateSpec.IsRange())
	assert.True(t, got.DateSpec.End.Equal(alert.DateSpec.End))
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	alert := newAlert(99)
	require.NoError(t, db.CreateAlert(ctx, alert))
	require.NoError(t, db.Close())

	reopened, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.OwnerID)
}

// Concurrent updates to the same record must never interleave fields.
func TestSQLite_ConcurrentUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alert := newAlert(1)
	require.NoError(t, db.CreateAlert(ctx, alert))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			price := float64(400 + i)
			at := time.Now().UTC()
			a := *alert
			a.Status = model.StatusActive
			a.LastCheckedAt = at
			a.LastNotifiedPrice = &price
			a.LastNotifiedAt = &at
			err := db.UpdateAlert(ctx, &a)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := db.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastNotifiedPrice)
	require.NotNil(t, got.LastNotifiedAt)
	// The record reflects exactly one of the writes.
	assert.GreaterOrEqual(t, *got.LastNotifiedPrice, 400.0)
	assert.Less(t, *got.LastNotifiedPrice, 410.0)
}
