package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/timestate"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db         *sqlx.DB
	classifier *timestate.Classifier
	hub        *hub
	log        *zap.Logger
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClassifier sets the classifier used to stamp entries on write.
func WithClassifier(c *timestate.Classifier) Option {
	return func(s *SQLiteStore) { s.classifier = c }
}

// WithLogger sets the logger used for background subscription errors.
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLiteStore) { s.log = l }
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One connection serializes writes and keeps ":memory:" databases
	// from splitting across pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:         db,
		classifier: timestate.New(),
		hub:        newHub(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close ends all subscriptions and closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// entryColumns is the column list shared by every entry SELECT.
const entryColumns = "id, title, set_date, is_done, time_state, repeat, list_type, created_at"

// entryRow mirrors the entries table.
type entryRow struct {
	ID        string       `db:"id"`
	Title     string       `db:"title"`
	SetDate   sql.NullTime `db:"set_date"`
	IsDone    int          `db:"is_done"`
	TimeState string       `db:"time_state"`
	Repeat    string       `db:"repeat"`
	ListType  string       `db:"list_type"`
	CreatedAt time.Time    `db:"created_at"`
}

func (r entryRow) toEntry() model.Entry {
	e := model.Entry{
		ID:        r.ID,
		Title:     r.Title,
		IsDone:    r.IsDone != 0,
		TimeState: model.TimeState(r.TimeState),
		Repeat:    model.Repeat(r.Repeat),
		ListType:  model.ListType(r.ListType),
		CreatedAt: r.CreatedAt,
	}
	if r.SetDate.Valid {
		d := r.SetDate.Time
		e.SetDate = &d
	}
	return e
}

// Insert assigns an ID, stamps the time state from the entry's date and
// persists it. The entry's incoming ID, TimeState and CreatedAt are ignored.
func (s *SQLiteStore) Insert(ctx context.Context, entry model.Entry) (model.Entry, error) {
	entry.ID = uuid.New().String()
	entry.CreatedAt = time.Now().UTC()
	entry.TimeState = s.classifier.Classify(entry.SetDate)
	if entry.Repeat == "" {
		entry.Repeat = model.RepeatNone
	}
	if entry.ListType == "" {
		entry.ListType = model.ListDefault
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Title, utcDate(entry.SetDate), boolToInt(entry.IsDone),
		string(entry.TimeState), string(entry.Repeat), string(entry.ListType),
		entry.CreatedAt,
	)
	if err != nil {
		return model.Entry{}, fmt.Errorf("inserting entry: %w", err)
	}

	s.hub.notify()
	return entry, nil
}

// utcDate returns d in UTC. The driver cannot read back zone names such as
// "+0545" that it writes for non-UTC times.
func utcDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	u := d.UTC()
	return &u
}

// Update overwrites every mutable field of the entry with upd.ID. A missing
// ID is a no-op. An empty TimeState is recomputed from SetDate.
func (s *SQLiteStore) Update(ctx context.Context, upd model.EntryUpdate) error {
	if upd.TimeState == "" {
		upd.TimeState = s.classifier.Classify(upd.SetDate)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE entries SET
			title = ?, set_date = ?, time_state = ?,
			repeat = ?, list_type = ?, is_done = ?
		WHERE id = ?`,
		upd.Title, utcDate(upd.SetDate), string(upd.TimeState),
		string(upd.Repeat), string(upd.ListType), boolToInt(upd.IsDone),
		upd.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry %s: %w", upd.ID, err)
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		s.hub.notify()
	}
	return nil
}

// Delete removes an entry by ID. Deleting an absent entry is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting entry %s: %w", id, err)
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		s.hub.notify()
	}
	return nil
}

// Get retrieves a single entry by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Entry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting entry %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry %s: %w", id, err)
	}

	e := row.toEntry()
	return &e, nil
}

// Query retrieves entries matching q, oldest first.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]model.Entry, error) {
	query, args := buildQuery(q)

	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}

	entries := make([]model.Entry, len(rows))
	for i, r := range rows {
		entries[i] = r.toEntry()
	}
	return entries, nil
}

// Restamp reclassifies every entry against today and rewrites those whose
// stored time state has gone stale.
func (s *SQLiteStore) Restamp(ctx context.Context) (int, error) {
	entries, err := s.Query(ctx, Query{})
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, e := range entries {
		state := s.classifier.Classify(e.SetDate)
		if state == e.TimeState {
			continue
		}
		// A concurrent Update may have rewritten the row since it was read.
		result, err := s.db.ExecContext(ctx,
			"UPDATE entries SET time_state = ? WHERE id = ? AND time_state = ?",
			string(state), e.ID, string(e.TimeState),
		)
		if err != nil {
			return changed, fmt.Errorf("restamping entry %s: %w", e.ID, err)
		}
		if rows, _ := result.RowsAffected(); rows > 0 {
			changed++
		}
	}

	if changed > 0 {
		s.hub.notify()
	}
	return changed, nil
}

// buildQuery constructs the SQL query and args for a Query.
func buildQuery(q Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q.Title != nil {
		conditions = append(conditions, "instr(lower(title), lower(?)) > 0")
		args = append(args, *q.Title)
	}
	if q.ListType != nil {
		conditions = append(conditions, "list_type = ?")
		args = append(args, *q.ListType)
	}
	if q.Done != nil {
		conditions = append(conditions, "is_done = ?")
		args = append(args, boolToInt(*q.Done))
	}

	query := "SELECT " + entryColumns + " FROM entries"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	return query, args
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
