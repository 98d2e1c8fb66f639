package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/nhle/todolist/internal/credential"
	"github.com/nhle/todolist/internal/prefs"
	"github.com/nhle/todolist/internal/share"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/timestate"
	"github.com/nhle/todolist/internal/todo"
)

// env holds the opened state shared by every command.
type env struct {
	store      *store.SQLiteStore
	classifier *timestate.Classifier
	svc        *todo.Service
}

// openEnv opens the database and list registry named by the loaded config.
func openEnv() (*env, error) {
	c := timestate.New()

	s, err := store.NewSQLiteStore(cfg.Storage.DBPath,
		store.WithClassifier(c),
		store.WithLogger(logger.Named("store")),
	)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	lists, err := prefs.OpenRegistry(cfg.Storage.PrefsPath)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening list registry: %w", err)
	}

	return &env{
		store:      s,
		classifier: c,
		svc:        todo.NewService(s, lists, c, logger.Named("todo")),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// resolveID expands a unique id prefix to the full entry id.
func (e *env) resolveID(ctx context.Context, prefix string) (string, error) {
	all, err := e.svc.All(ctx)
	if err != nil {
		return "", err
	}

	var match string
	for _, entry := range all {
		if entry.ID == prefix {
			return entry.ID, nil
		}
		if strings.HasPrefix(entry.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = entry.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no task with id %q: %w", prefix, store.ErrNotFound)
	}
	return match, nil
}

// drafter builds the IMAP drafter from config, or nil when sharing is not
// configured. The password comes from the system keyring.
func drafter() (*share.Drafter, error) {
	sc := cfg.Share
	if sc.IMAPHost == "" || sc.IMAPUsername == "" {
		return nil, nil
	}
	password, err := credential.Get(credential.IMAPKey(sc.IMAPUsername))
	if err != nil {
		return nil, fmt.Errorf("loading IMAP password (run 'todo login'): %w", err)
	}
	return share.NewDrafter(sc.IMAPHost, sc.IMAPPort, sc.IMAPUsername, password, sc.IMAPTLS, sc.Mailbox), nil
}

// envelope addresses shared entries from config.
func envelope() share.Envelope {
	var to []string
	for _, addr := range strings.Split(cfg.Share.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	from := cfg.Share.From
	if from == "" {
		from = cfg.Share.IMAPUsername
	}
	return share.Envelope{From: from, To: to}
}
