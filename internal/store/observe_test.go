package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

// waitFor reads snapshots until match accepts one or the deadline passes.
func waitFor(t *testing.T, sub *store.Subscription, match func([]model.Entry) bool) []model.Entry {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-sub.C:
			require.True(t, ok, "subscription closed early")
			if match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
			return nil
		}
	}
}

func titled(title string) func([]model.Entry) bool {
	return func(entries []model.Entry) bool {
		for _, e := range entries {
			if e.Title == title {
				return true
			}
		}
		return false
	}
}

func TestWatchDeliversInitialSnapshot(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, model.Entry{Title: "existing"})
	require.NoError(t, err)

	sub := s.Watch(ctx, store.Query{})
	defer sub.Close()

	snap := waitFor(t, sub, func([]model.Entry) bool { return true })
	require.Len(t, snap, 1)
	assert.Equal(t, "existing", snap[0].Title)
}

func TestWatchPushesMutations(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	sub := s.Watch(ctx, store.Query{})
	defer sub.Close()
	waitFor(t, sub, func(e []model.Entry) bool { return len(e) == 0 })

	e, err := s.Insert(ctx, model.Entry{Title: "fresh", SetDate: daysFromEpoch(0)})
	require.NoError(t, err)
	snap := waitFor(t, sub, titled("fresh"))
	assert.Equal(t, model.TimeStateToday, snap[0].TimeState)

	upd := model.UpdateOf(e)
	upd.Title = "renamed"
	require.NoError(t, s.Update(ctx, upd))
	waitFor(t, sub, titled("renamed"))

	require.NoError(t, s.Delete(ctx, e.ID))
	waitFor(t, sub, func(e []model.Entry) bool { return len(e) == 0 })
}

func TestWatchFilteredViews(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	work := s.Watch(ctx, store.ByListType("Work"))
	defer work.Close()
	done := s.Watch(ctx, store.Completed())
	defer done.Close()

	_, err := s.Insert(ctx, model.Entry{Title: "home chore", ListType: "Home"})
	require.NoError(t, err)
	e, err := s.Insert(ctx, model.Entry{Title: "ship it", ListType: "Work"})
	require.NoError(t, err)

	snap := waitFor(t, work, titled("ship it"))
	assert.Len(t, snap, 1)

	upd := model.UpdateOf(e)
	upd.IsDone = true
	require.NoError(t, s.Update(ctx, upd))

	snap = waitFor(t, done, titled("ship it"))
	assert.Len(t, snap, 1)
}

func TestWatchEndsOnCancelAndClose(t *testing.T) {
	s, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	sub := s.Watch(ctx, store.Query{})
	cancel()

	deadline := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, open = <-sub.C:
		case <-deadline:
			t.Fatal("subscription did not close after cancel")
		}
	}

	// Close after the goroutine has exited must not block or panic.
	sub.Close()
	sub.Close()

	other := s.Watch(context.Background(), store.Query{})
	other.Close()
	_, open := <-other.C
	for open {
		_, open = <-other.C
	}
}
