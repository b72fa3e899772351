package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coparent/custody-engine/engine"
	"github.com/coparent/custody-engine/store/sqlite"
)

type schedulerStaticProvider struct{}

func (schedulerStaticProvider) ListHolidays(context.Context, string, int) ([]engine.SchoolHoliday, error) {
	return nil, nil
}

func TestRefreshScheduler_RecomputesAllChildren(t *testing.T) {
	// GIVEN: two stored children and no warm managers
	// WHEN: running one recomputation pass
	// THEN: a manager exists for each child afterwards

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(store, schedulerStaticProvider{})
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	now := time.Date(2025, time.June, 23, 9, 0, 0, 0, paris)
	handler.Now = func() time.Time { return now }

	config := json.RawMessage(`{"custody_type": "alternate_week_parity"}`)
	ctx := context.Background()
	first, err := store.CreateChild(ctx, "Emma", config)
	require.NoError(t, err)
	second, err := store.CreateChild(ctx, "Léo", config)
	require.NoError(t, err)

	scheduler := NewRefreshScheduler(store, handler)
	scheduler.recomputeAll()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Contains(t, handler.managers, first.ID)
	assert.Contains(t, handler.managers, second.ID)
}

func TestRefreshScheduler_StartStop(t *testing.T) {
	// GIVEN: a scheduler with a long interval
	// WHEN: starting and stopping
	// THEN: the run goroutine exits cleanly

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(store, schedulerStaticProvider{})
	scheduler := NewRefreshScheduler(store, handler)
	scheduler.CheckInterval = time.Hour

	scheduler.Start()
	scheduler.Stop()
}

func TestRefreshScheduler_DisabledDoesNotStart(t *testing.T) {
	// GIVEN: a disabled scheduler
	// WHEN: starting and stopping
	// THEN: no ticker is created, Stop is a no-op

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(store, schedulerStaticProvider{})
	scheduler := NewRefreshScheduler(store, handler)
	scheduler.Enabled = false

	scheduler.Start()
	assert.Nil(t, scheduler.ticker)
	scheduler.Stop()
}
