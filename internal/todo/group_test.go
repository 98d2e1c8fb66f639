package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/model"
)

func TestGroupByTimeState(t *testing.T) {
	entries := []model.Entry{
		{Title: "a", TimeState: model.TimeStateLater},
		{Title: "b", TimeState: model.TimeStateToday},
		{Title: "c", TimeState: model.TimeStateNoDate},
		{Title: "d", TimeState: model.TimeStateOverdue},
		{Title: "e", TimeState: model.TimeStateToday},
		{Title: "f", TimeState: "Someday"},
	}

	groups := GroupByTimeState(entries)
	require.Len(t, groups, 4)

	assert.Equal(t, model.TimeStateOverdue, groups[0].State)
	assert.Equal(t, model.TimeStateToday, groups[1].State)
	assert.Equal(t, []string{"b", "e"}, titles(groups[1].Entries))
	assert.Equal(t, model.TimeStateLater, groups[2].State)
	assert.Equal(t, model.TimeStateNoDate, groups[3].State)
	assert.Equal(t, []string{"c", "f"}, titles(groups[3].Entries))
}

func TestGroupByTimeStateEmpty(t *testing.T) {
	assert.Empty(t, GroupByTimeState(nil))
}

func titles(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}
