// Package share renders an entry as text and as a mail message that can be
// saved to an IMAP drafts folder.
package share

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/todolist/internal/model"
)

const (
	dateLayout = "Mon, 2 Jan 2006"
	timeLayout = "3:04 PM"
)

// FormatDate renders the date part of an optional due date.
func FormatDate(t *time.Time) string {
	if t == nil {
		return "Date not set"
	}
	return t.Format(dateLayout)
}

// FormatTime renders the clock part of an optional due date.
func FormatTime(t *time.Time) string {
	if t == nil {
		return "Time not set"
	}
	return t.Format(timeLayout)
}

// Text renders e as the plain text body that is shared.
func Text(e model.Entry) string {
	var b strings.Builder
	b.WriteString(e.Title)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Date: %s\n", FormatDate(e.SetDate))
	fmt.Fprintf(&b, "Time: %s\n", FormatTime(e.SetDate))
	fmt.Fprintf(&b, "Repeat: %s\n", e.Repeat)
	fmt.Fprintf(&b, "List: %s\n", e.ListType)
	if e.IsDone {
		b.WriteString("Status: done\n")
	}
	return b.String()
}

// Envelope addresses a shared entry.
type Envelope struct {
	From string
	To   []string
	Date time.Time
}

// ErrNoSender is returned when an envelope has no From address.
var ErrNoSender = errors.New("share: sender address is required")

// WriteMessage writes e to w as a single-part text/plain RFC 5322 message.
func WriteMessage(w io.Writer, env Envelope, e model.Entry) error {
	if strings.TrimSpace(env.From) == "" {
		return ErrNoSender
	}

	from, err := mail.ParseAddress(env.From)
	if err != nil {
		return fmt.Errorf("parsing sender %q: %w", env.From, err)
	}

	to := make([]*mail.Address, 0, len(env.To))
	for _, raw := range env.To {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return fmt.Errorf("parsing recipient %q: %w", raw, err)
		}
		to = append(to, addr)
	}

	date := env.Date
	if date.IsZero() {
		date = time.Now()
	}

	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{from})
	if len(to) > 0 {
		h.SetAddressList("To", to)
	}
	h.SetSubject(e.Title)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return fmt.Errorf("generating message id: %w", err)
	}

	body, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(body, Text(e)); err != nil {
		body.Close()
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := body.Close(); err != nil {
		return fmt.Errorf("closing message body: %w", err)
	}
	return nil
}
