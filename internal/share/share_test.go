package share

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/model"
)

func sample() model.Entry {
	due := time.Date(2026, time.March, 14, 16, 45, 0, 0, time.UTC)
	return model.Entry{
		Title:    "Pick up cake",
		SetDate:  &due,
		Repeat:   model.RepeatYearly,
		ListType: "Family",
	}
}

func TestText(t *testing.T) {
	got := Text(sample())

	assert.Contains(t, got, "Pick up cake\n")
	assert.Contains(t, got, "Date: Sat, 14 Mar 2026\n")
	assert.Contains(t, got, "Time: 4:45 PM\n")
	assert.Contains(t, got, "Repeat: Once a Year\n")
	assert.Contains(t, got, "List: Family\n")
	assert.NotContains(t, got, "Status")
}

func TestTextWithoutDate(t *testing.T) {
	e := model.Entry{Title: "Someday", Repeat: model.RepeatNone, ListType: "Default", IsDone: true}
	got := Text(e)

	assert.Contains(t, got, "Date: Date not set\n")
	assert.Contains(t, got, "Time: Time not set\n")
	assert.Contains(t, got, "Status: done\n")
}

func TestWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	env := Envelope{
		From: "Me <me@example.com>",
		To:   []string{"you@example.com", ""},
		Date: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, WriteMessage(&buf, env, sample()))

	r, err := mail.CreateReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	subject, err := r.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Pick up cake", subject)

	from, err := r.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "me@example.com", from[0].Address)

	to, err := r.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "you@example.com", to[0].Address)

	part, err := r.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Date: Sat, 14 Mar 2026")
}

func TestWriteMessageRequiresSender(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteMessage(&buf, Envelope{}, sample()), ErrNoSender)

	err := WriteMessage(&buf, Envelope{From: "not an address"}, sample())
	assert.Error(t, err)
}

func TestDrafterRequiresHost(t *testing.T) {
	d := NewDrafter("", "993", "", "", true, "")
	assert.Equal(t, "Drafts", d.mailbox)

	err := d.Save(context.Background(), Envelope{From: "me@example.com"}, sample())
	assert.ErrorContains(t, err, "imap host and username are required")
}
