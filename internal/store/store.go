package store

import (
	"context"
	"errors"

	"github.com/nhle/todolist/internal/model"
)

// ErrNotFound is returned by lookups for an entry that does not exist.
// Update and Delete never return it.
var ErrNotFound = errors.New("entry not found")

// Query selects entries. Zero fields do not filter; set fields combine with AND.
type Query struct {
	Title    *string // case-insensitive substring of the title
	ListType *string // exact list name
	Done     *bool   // completion flag
}

// ByTitle matches entries whose title contains substr.
func ByTitle(substr string) Query { return Query{Title: &substr} }

// ByListType matches entries in the named list.
func ByListType(name string) Query { return Query{ListType: &name} }

// Completed matches entries marked done.
func Completed() Query {
	done := true
	return Query{Done: &done}
}

// Store defines the persistence interface for to-do entries.
type Store interface {
	Insert(ctx context.Context, entry model.Entry) (model.Entry, error)
	Update(ctx context.Context, upd model.EntryUpdate) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Entry, error)
	Query(ctx context.Context, q Query) ([]model.Entry, error)

	// Watch returns a subscription that receives q's result set now and
	// again after every mutation, until ctx ends or it is closed.
	Watch(ctx context.Context, q Query) *Subscription

	// Restamp rewrites stale time states and reports how many changed.
	Restamp(ctx context.Context) (int, error)
}
