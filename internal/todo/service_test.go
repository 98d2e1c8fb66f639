package todo_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/prefs"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/todo"
	"github.com/nhle/todolist/tests/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func at(days int) *time.Time {
	d := epoch.AddDate(0, 0, days)
	return &d
}

func newService(t *testing.T) (*todo.Service, *store.SQLiteStore, *testutil.Clock) {
	t.Helper()

	clock := testutil.NewClock(epoch)
	c := clock.Classifier()
	s := testutil.NewTestStore(t, store.WithClassifier(c))

	lists, err := prefs.OpenRegistry(filepath.Join(t.TempDir(), "prefs.yaml"))
	require.NoError(t, err)
	require.NoError(t, lists.Add("Work"))

	return todo.NewService(s, lists, c, nil), s, clock
}

func TestAddThenQueryAll(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Add(ctx, todo.Draft{Title: "  pay rent ", SetDate: at(5)})
	require.NoError(t, err)
	assert.Equal(t, "pay rent", e.Title)
	assert.Equal(t, model.ListDefault, e.ListType)
	assert.Equal(t, model.RepeatNone, e.Repeat)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, e.ID, all[0].ID)
	assert.Equal(t, model.TimeStateThisWeek, all[0].TimeState)
	assert.False(t, all[0].IsDone)
}

func TestAddValidates(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, todo.Draft{Title: "   "})
	assert.ErrorIs(t, err, todo.ErrEmptyTitle)

	_, err = svc.Add(ctx, todo.Draft{Title: "x", ListType: "Nowhere"})
	assert.ErrorIs(t, err, todo.ErrUnknownList)
}

func TestEditReclassifiesAndKeepsDone(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Add(ctx, todo.Draft{Title: "report", SetDate: at(1)})
	require.NoError(t, err)
	_, err = svc.SetDone(ctx, e.ID, true)
	require.NoError(t, err)

	err = svc.Edit(ctx, e.ID, todo.Draft{Title: "final report", SetDate: at(10), ListType: "Work"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "final report", got.Title)
	assert.Equal(t, model.TimeStateNextWeek, got.TimeState)
	assert.Equal(t, model.ListType("Work"), got.ListType)
	assert.True(t, got.IsDone)

	err = svc.Edit(ctx, "missing", todo.Draft{Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetDoneKeepsStoredTimeState(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()

	e, err := svc.Add(ctx, todo.Draft{Title: "gym", SetDate: at(1)})
	require.NoError(t, err)

	clock.Advance(72 * time.Hour)
	follow, err := svc.SetDone(ctx, e.ID, true)
	require.NoError(t, err)
	assert.Nil(t, follow)

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDone)
	assert.Equal(t, model.TimeStateTomorrow, got.TimeState, "check toggles do not reclassify")

	follow, err = svc.Toggle(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, follow)
	got, err = svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDone)
}

func TestCompletingRepeatingEntrySchedulesNext(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Add(ctx, todo.Draft{
		Title:    "water plants",
		SetDate:  at(0),
		Repeat:   model.RepeatWeekly,
		ListType: "Work",
	})
	require.NoError(t, err)

	follow, err := svc.SetDone(ctx, e.ID, true)
	require.NoError(t, err)
	require.NotNil(t, follow)
	assert.NotEqual(t, e.ID, follow.ID)
	assert.Equal(t, "water plants", follow.Title)
	assert.False(t, follow.IsDone)
	assert.Equal(t, model.RepeatWeekly, follow.Repeat)
	assert.Equal(t, model.ListType("Work"), follow.ListType)
	require.NotNil(t, follow.SetDate)
	assert.True(t, at(7).Equal(*follow.SetDate))
	assert.Equal(t, model.TimeStateNextMonth, follow.TimeState)

	// Already done: completing again schedules nothing.
	again, err := svc.SetDone(ctx, e.ID, true)
	require.NoError(t, err)
	assert.Nil(t, again)

	done, err := svc.Completed(ctx)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, e.ID, done[0].ID)
}

func TestRemoveListCascadesToItsEntriesOnly(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	for _, d := range []todo.Draft{
		{Title: "a", ListType: "Work"},
		{Title: "b", ListType: "Default"},
		{Title: "c", ListType: "Work"},
		{Title: "d", ListType: "Completed"},
	} {
		_, err := svc.Add(ctx, d)
		require.NoError(t, err)
	}

	deleted, err := svc.RemoveList(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, []string{"Default", "Completed"}, svc.Lists())

	remaining, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "b", remaining[0].Title)
	assert.Equal(t, "d", remaining[1].Title)

	work, err := svc.ByList(ctx, "Work")
	require.NoError(t, err)
	assert.Empty(t, work)
}

func TestListsAndFilters(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddList("Errands"))
	_, err := svc.Add(ctx, todo.Draft{Title: "Post letter", ListType: "Errands"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, todo.Draft{Title: "Plan sprint", ListType: "Work"})
	require.NoError(t, err)

	all, err := svc.ByList(ctx, model.ListAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	errands, err := svc.ByList(ctx, "Errands")
	require.NoError(t, err)
	require.Len(t, errands, 1)
	assert.Equal(t, "Post letter", errands[0].Title)

	found, err := svc.Search(ctx, "SPRINT")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Plan sprint", found[0].Title)
}

func TestWatchSeesServiceWrites(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	sub := svc.Watch(ctx, todo.ListQuery("Work"))
	defer sub.Close()

	_, err := svc.Add(ctx, todo.Draft{Title: "standup", ListType: "Work"})
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-sub.C:
			if len(snap) == 1 && snap[0].Title == "standup" {
				return
			}
		case <-deadline:
			t.Fatal("no snapshot with the new entry")
		}
	}
}
