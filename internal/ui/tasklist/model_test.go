package tasklist

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nhle/todolist/internal/keys"
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

func newService(t *testing.T) *todo.Service {
	t.Helper()
	clock := testutil.NewClock(epoch)
	c := clock.Classifier()
	s := testutil.NewTestStore(t, store.WithClassifier(c))
	lists, err := prefs.OpenRegistry(filepath.Join(t.TempDir(), "prefs.yaml"))
	require.NoError(t, err)
	require.NoError(t, lists.Add("Work"))
	return todo.NewService(s, lists, c, nil)
}

// pump runs cmd until it yields a SnapshotMsg accepted by match.
func pump(t *testing.T, m Model, cmd tea.Cmd, match func([]model.Entry) bool) Model {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msg := cmd()
		snap, ok := msg.(SnapshotMsg)
		require.True(t, ok, "unexpected message %T", msg)
		m, cmd = m.Update(snap)
		if match(snap.Entries) {
			return m
		}
		// The follow-up wait is the second command of the batch.
		cmd = nextWait(m)
	}
	t.Fatal("no matching snapshot")
	return m
}

func nextWait(m Model) tea.Cmd {
	return waitForSnapshot(m.sub)
}

func TestBuildItemsGroupsByTimeState(t *testing.T) {
	day := func(n int) *time.Time { d := epoch.AddDate(0, 0, n); return &d }
	entries := []model.Entry{
		{Title: "later", SetDate: day(60), TimeState: model.TimeStateLater},
		{Title: "undated", TimeState: model.TimeStateNoDate},
		{Title: "today", SetDate: day(0), TimeState: model.TimeStateToday},
		{Title: "also today", SetDate: day(0), TimeState: model.TimeStateToday},
	}

	items := buildItems(entries)
	require.Len(t, items, 7)
	assert.Equal(t, HeaderItem{State: model.TimeStateToday, Count: 2}, items[0])
	assert.Equal(t, "today", items[1].(EntryItem).Entry.Title)
	assert.Equal(t, "also today", items[2].(EntryItem).Entry.Title)
	assert.Equal(t, HeaderItem{State: model.TimeStateLater, Count: 1}, items[3])
	assert.Equal(t, HeaderItem{State: model.TimeStateNoDate, Count: 1}, items[5])
}

func TestFilterQuery(t *testing.T) {
	q := Filter{List: model.ListAll}.Query()
	assert.Equal(t, store.Query{}, q)

	q = Filter{List: "Work", CompletedOnly: true, Search: "rep"}.Query()
	require.NotNil(t, q.ListType)
	require.NotNil(t, q.Done)
	require.NotNil(t, q.Title)
	assert.Equal(t, "Work", *q.ListType)
	assert.True(t, *q.Done)
	assert.Equal(t, "rep", *q.Title)

	assert.Equal(t, `Work · completed · "rep"`, Filter{List: "Work", CompletedOnly: true, Search: "rep"}.Label())
}

func TestModelFollowsSubscription(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	m := New(svc, keys.DefaultKeyMap(), "", 80, 24)
	cmd := m.Init()
	defer m.Close()

	m = pump(t, m, cmd, func(e []model.Entry) bool { return len(e) == 0 })
	assert.Empty(t, m.Entries())
	_, ok := m.SelectedEntry()
	assert.False(t, ok)

	_, err := svc.Add(ctx, todo.Draft{Title: "write tests", ListType: "Work"})
	require.NoError(t, err)

	m = pump(t, m, nextWait(m), func(e []model.Entry) bool { return len(e) == 1 })
	sel, ok := m.SelectedEntry()
	require.True(t, ok, "cursor skips the bucket heading")
	assert.Equal(t, "write tests", sel.Title)

	cmd = m.SetFilter(Filter{List: "Default"})
	m = pump(t, m, cmd, func(e []model.Entry) bool { return len(e) == 0 })
	assert.Equal(t, "Default", m.Filter().Label())
	assert.Empty(t, m.Entries())
}

func TestStaleSnapshotsAreDropped(t *testing.T) {
	svc := newService(t)

	m := New(svc, keys.DefaultKeyMap(), model.ListAll, 80, 24)
	old := m.Init()
	m.SetFilter(Filter{List: "Work"})
	defer m.Close()

	// The first subscription was closed by SetFilter; once any buffered
	// snapshot is drained its wait yields nil.
	for msg := old(); msg != nil; msg = old() {
		assert.IsType(t, SnapshotMsg{}, msg)
	}

	m, cmd := m.Update(SnapshotMsg{sub: nil, Entries: []model.Entry{{Title: "ghost"}}})
	assert.Nil(t, cmd)
	assert.Empty(t, m.Entries())
}
