package rollover_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/rollover"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/tests/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, time.March, 10, 22, 0, 0, 0, time.UTC)

func next(t *testing.T, w *rollover.Watcher) rollover.DayChangedMsg {
	t.Helper()

	got := make(chan any, 1)
	go func() { got <- w.WaitForNextResult()() }()

	select {
	case msg := <-got:
		dc, ok := msg.(rollover.DayChangedMsg)
		require.True(t, ok, "unexpected message %T", msg)
		return dc
	case <-time.After(2 * time.Second):
		t.Fatal("no rollover result")
		return rollover.DayChangedMsg{}
	}
}

func TestWatcherRestampsOnNewDay(t *testing.T) {
	clock := testutil.NewClock(epoch)
	c := clock.Classifier()
	s := testutil.NewTestStore(t, store.WithClassifier(c))
	ctx := context.Background()

	e, err := s.Insert(ctx, model.Entry{Title: "dentist", SetDate: &epoch})
	require.NoError(t, err)
	require.Equal(t, model.TimeStateToday, e.TimeState)

	w := rollover.New(s, c, time.Hour, nil)
	require.NotNil(t, w.Start())
	defer w.Stop()
	assert.Nil(t, w.Start(), "second start is a no-op")

	first := next(t, w)
	require.NoError(t, first.Err)
	assert.Zero(t, first.Restamped)

	// Same day: a check restamps nothing and sends nothing.
	clock.Advance(time.Hour)
	w.Check()

	clock.Advance(2 * time.Hour)
	w.Check()
	got := next(t, w)
	require.NoError(t, got.Err)
	assert.Equal(t, 1, got.Restamped)
	assert.Equal(t, time.March, got.Day.Month())
	assert.Equal(t, 11, got.Day.Day())

	stored, err := s.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TimeStateOverdue, stored.TimeState)
}

func TestStopReleasesWaiters(t *testing.T) {
	clock := testutil.NewClock(epoch)
	c := clock.Classifier()
	s := testutil.NewTestStore(t, store.WithClassifier(c))

	w := rollover.New(s, c, 0, nil)
	w.Start()
	next(t, w)

	w.Stop()
	w.Stop()
	assert.Nil(t, w.WaitForNextResult()())
}

func TestStartAfterStopIsNoop(t *testing.T) {
	clock := testutil.NewClock(epoch)
	c := clock.Classifier()
	s := testutil.NewTestStore(t, store.WithClassifier(c))

	w := rollover.New(s, c, time.Hour, nil)
	require.NotNil(t, w.Start())
	next(t, w)
	w.Stop()

	assert.Nil(t, w.Start())
	w.Check()
	w.Stop()
	assert.Nil(t, w.WaitForNextResult()())
}
