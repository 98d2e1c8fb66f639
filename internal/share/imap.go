package share

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"github.com/nhle/todolist/internal/model"
)

// Drafter appends shared entries to a mailbox as draft messages.
type Drafter struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	mailbox  string
}

// NewDrafter creates a Drafter. An empty mailbox defaults to "Drafts".
func NewDrafter(host, port, username, password string, tls bool, mailbox string) *Drafter {
	if mailbox == "" {
		mailbox = "Drafts"
	}
	return &Drafter{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
		mailbox:  mailbox,
	}
}

// connect dials and authenticates. The caller must log out.
func (d *Drafter) connect() (*imapclient.Client, error) {
	if d.host == "" || d.username == "" {
		return nil, fmt.Errorf("imap host and username are required")
	}
	addr := d.host + ":" + d.port

	var client *imapclient.Client
	var err error
	if d.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(d.username, d.password).Wait(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("authenticating %s: %w", d.username, err)
	}

	return client, nil
}

// Save composes e and appends it to the drafts mailbox with the \Draft flag.
func (d *Drafter) Save(ctx context.Context, env Envelope, e model.Entry) error {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, env, e); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := d.connect()
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	cmd := client.Append(d.mailbox, int64(buf.Len()), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagDraft},
		Time:  time.Now(),
	})
	if _, err := cmd.Write(buf.Bytes()); err != nil {
		_ = cmd.Close()
		return fmt.Errorf("writing draft: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("finishing draft: %w", err)
	}
	if _, err := cmd.Wait(); err != nil {
		return fmt.Errorf("appending to %s: %w", d.mailbox, err)
	}

	return nil
}
