// Package todo is the application layer shared by the terminal UI and the
// command line. It decides when entries are classified and keeps the list
// registry and the entry store consistent.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/prefs"
	"github.com/nhle/todolist/internal/recur"
	"github.com/nhle/todolist/internal/store"
	"github.com/nhle/todolist/internal/timestate"
)

var (
	ErrEmptyTitle  = errors.New("title must not be empty")
	ErrUnknownList = errors.New("list is not registered")
)

// Draft holds the user-editable fields of an entry.
type Draft struct {
	Title    string
	SetDate  *time.Time
	Repeat   model.Repeat
	ListType model.ListType
}

// Service coordinates the entry store and the list registry.
type Service struct {
	store      store.Store
	lists      *prefs.Registry
	classifier *timestate.Classifier
	log        *zap.Logger
}

// NewService wires a Service. A nil logger is replaced with a no-op one.
func NewService(
	s store.Store,
	lists *prefs.Registry,
	c *timestate.Classifier,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, lists: lists, classifier: c, log: log}
}

// normalize validates a draft and fills in its defaults.
func (s *Service) normalize(d Draft) (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return d, ErrEmptyTitle
	}
	if d.Repeat == "" {
		d.Repeat = model.RepeatNone
	}
	if d.ListType == "" {
		d.ListType = model.ListType(s.lists.First())
	}
	if !s.lists.Contains(string(d.ListType)) {
		return d, fmt.Errorf("%w: %q", ErrUnknownList, d.ListType)
	}
	return d, nil
}

// Add creates a new open entry from d.
func (s *Service) Add(ctx context.Context, d Draft) (model.Entry, error) {
	d, err := s.normalize(d)
	if err != nil {
		return model.Entry{}, err
	}

	e, err := s.store.Insert(ctx, model.Entry{
		Title:    d.Title,
		SetDate:  d.SetDate,
		Repeat:   d.Repeat,
		ListType: d.ListType,
	})
	if err != nil {
		return model.Entry{}, err
	}

	s.log.Debug("entry added",
		zap.String("id", e.ID),
		zap.String("time_state", string(e.TimeState)),
		zap.String("list", string(e.ListType)),
	)
	return e, nil
}

// Edit overwrites the editable fields of entry id, reclassifying its date
// and keeping its completion flag.
func (s *Service) Edit(ctx context.Context, id string, d Draft) error {
	d, err := s.normalize(d)
	if err != nil {
		return err
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.store.Update(ctx, model.EntryUpdate{
		ID:        id,
		Title:     d.Title,
		SetDate:   d.SetDate,
		TimeState: s.classifier.Classify(d.SetDate),
		Repeat:    d.Repeat,
		ListType:  d.ListType,
		IsDone:    existing.IsDone,
	})
}

// SetDone marks entry id done or open. The stored time state is kept as it
// was. Completing a dated, repeating entry inserts its next occurrence,
// which is returned.
func (s *Service) SetDone(ctx context.Context, id string, done bool) (*model.Entry, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := model.UpdateOf(*existing)
	upd.IsDone = done
	if err := s.store.Update(ctx, upd); err != nil {
		return nil, err
	}

	if !done || existing.IsDone || !existing.Repeat.Recurring() || existing.SetDate == nil {
		return nil, nil
	}

	next, err := recur.Next(existing.Repeat, *existing.SetDate)
	if err != nil || next == nil {
		return nil, err
	}

	follow, err := s.store.Insert(ctx, model.Entry{
		Title:    existing.Title,
		SetDate:  next,
		Repeat:   existing.Repeat,
		ListType: existing.ListType,
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling next occurrence of %s: %w", id, err)
	}

	s.log.Debug("next occurrence scheduled",
		zap.String("from", id),
		zap.String("id", follow.ID),
		zap.Time("date", *next),
	)
	return &follow, nil
}

// Toggle flips the completion flag of entry id.
func (s *Service) Toggle(ctx context.Context, id string) (*model.Entry, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetDone(ctx, id, !existing.IsDone)
}

// Delete removes entry id; an absent entry is ignored.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Get loads a single entry.
func (s *Service) Get(ctx context.Context, id string) (*model.Entry, error) {
	return s.store.Get(ctx, id)
}

// All returns every entry.
func (s *Service) All(ctx context.Context) ([]model.Entry, error) {
	return s.store.Query(ctx, store.Query{})
}

// Search returns entries whose title contains title, ignoring case.
func (s *Service) Search(ctx context.Context, title string) ([]model.Entry, error) {
	return s.store.Query(ctx, store.ByTitle(title))
}

// ByList returns the entries of list name. model.ListAll returns everything.
func (s *Service) ByList(ctx context.Context, name string) ([]model.Entry, error) {
	return s.store.Query(ctx, ListQuery(name))
}

// Completed returns entries marked done.
func (s *Service) Completed(ctx context.Context) ([]model.Entry, error) {
	return s.store.Query(ctx, store.Completed())
}

// Watch subscribes to q.
func (s *Service) Watch(ctx context.Context, q store.Query) *store.Subscription {
	return s.store.Watch(ctx, q)
}

// Restamp rewrites stale time states.
func (s *Service) Restamp(ctx context.Context) (int, error) {
	return s.store.Restamp(ctx)
}

// ListQuery returns the query for a list filter, treating model.ListAll
// as no filter.
func ListQuery(name string) store.Query {
	if name == "" || name == model.ListAll {
		return store.Query{}
	}
	return store.ByListType(name)
}

// Lists returns the registered list names.
func (s *Service) Lists() []string {
	return s.lists.Names()
}

// AddList registers a new list name.
func (s *Service) AddList(name string) error {
	return s.lists.Add(name)
}

// RemoveList unregisters name and deletes every entry in it, one at a time.
// It returns how many entries were deleted; on error, deletions made before
// the failure remain.
func (s *Service) RemoveList(ctx context.Context, name string) (int, error) {
	if _, err := s.lists.Remove(name); err != nil {
		return 0, err
	}

	entries, err := s.store.Query(ctx, store.ByListType(name))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, e := range entries {
		if err := s.store.Delete(ctx, e.ID); err != nil {
			return deleted, fmt.Errorf("removing list %q: %w", name, err)
		}
		deleted++
	}

	s.log.Info("list removed", zap.String("list", name), zap.Int("deleted", deleted))
	return deleted, nil
}

// Query runs an arbitrary store query.
func (s *Service) Query(ctx context.Context, q store.Query) ([]model.Entry, error) {
	return s.store.Query(ctx, q)
}
