package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepeat(t *testing.T) {
	r, err := ParseRepeat("")
	require.NoError(t, err)
	assert.Equal(t, RepeatNone, r)

	r, err = ParseRepeat("  once a WEEK ")
	require.NoError(t, err)
	assert.Equal(t, RepeatWeekly, r)
	assert.True(t, r.Recurring())
	assert.False(t, RepeatNone.Recurring())

	_, err = ParseRepeat("fortnightly")
	assert.ErrorIs(t, err, ErrUnknownRepeat)
}

func TestTimeStateLabels(t *testing.T) {
	assert.Equal(t, "No Date", TimeStateNoDate.Label())
	assert.Equal(t, "Next Month", TimeStateNextMonth.Label())
	assert.Equal(t, "Overdue", TimeStateOverdue.Label())

	for _, s := range TimeStateOrder {
		assert.True(t, s.Valid())
	}
	assert.False(t, TimeState("Yesterday").Valid())
	assert.Len(t, TimeStateOrder, 8)
}

func TestListTypes(t *testing.T) {
	assert.False(t, ListDefault.Custom())
	assert.False(t, ListCompleted.Custom())
	assert.True(t, ListType("Groceries").Custom())
}
