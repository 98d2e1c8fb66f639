// Package prefs persists small user preferences, chiefly the registry of
// list names, in a YAML file managed by viper.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/nhle/todolist/internal/model"
)

const (
	// listTypeKey holds the registry as one delimited string.
	listTypeKey = "list_type"
	delimiter   = ","
)

var (
	ErrInvalidName = errors.New("invalid list name")
	ErrDuplicate   = errors.New("list already exists")
	ErrLastList    = errors.New("cannot remove the last list")
)

// DefaultLists seeds a registry that has never been saved.
var DefaultLists = []string{string(model.ListDefault), string(model.ListCompleted)}

// Registry is the ordered set of list names. Every change is written
// through to the preferences file.
type Registry struct {
	mu    sync.Mutex
	v     *viper.Viper
	path  string
	names []string
}

// OpenRegistry loads the registry from path, seeding the defaults when the
// file or key is missing.
func OpenRegistry(path string) (*Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading preferences %s: %w", path, err)
		}
	}

	names := decode(v.GetString(listTypeKey))
	if len(names) == 0 {
		names = slices.Clone(DefaultLists)
	}

	return &Registry{v: v, path: path, names: names}, nil
}

// decode splits the stored string, dropping blanks and repeats.
func decode(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, delimiter) {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(names, part) {
			continue
		}
		names = append(names, part)
	}
	return names
}

// Names returns a copy of the registered names in order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.names)
}

// First returns the name new entries default to.
func (r *Registry) First() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names[0]
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.names, name)
}

// Add appends a new list name and saves the registry.
func (r *Registry) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, delimiter) || name == model.ListAll {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.names, name) {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}

	next := append(slices.Clone(r.names), name)
	if err := r.save(next); err != nil {
		return err
	}
	r.names = next
	return nil
}

// Remove drops name from the registry and saves it. It reports false when
// the name was not registered. Entries in the list are not touched here.
func (r *Registry) Remove(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.Index(r.names, name)
	if idx < 0 {
		return false, nil
	}
	if len(r.names) == 1 {
		return false, fmt.Errorf("%w: %q", ErrLastList, name)
	}

	next := slices.Delete(slices.Clone(r.names), idx, idx+1)
	if err := r.save(next); err != nil {
		return false, err
	}
	r.names = next
	return true, nil
}

// save writes names to the preferences file, creating its directory.
func (r *Registry) save(names []string) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences directory %s: %w", dir, err)
	}

	r.v.Set(listTypeKey, strings.Join(names, delimiter))
	if err := r.v.WriteConfigAs(r.path); err != nil {
		return fmt.Errorf("writing preferences to %s: %w", r.path, err)
	}
	return nil
}
