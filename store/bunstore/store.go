package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/prefs"
	pulsestore "github.com/xraph/pulse/store"
)

// compile-time interface check
var _ pulsestore.Store = (*Store)(nil)

// Store implements store.Store using the Bun ORM.
type Store struct {
	db *bun.DB
}

// New creates a new Bun-backed store.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying Bun database for direct access.
func (s *Store) DB() *bun.DB { return s.db }

// Migrate creates the required tables using Bun's CreateTable.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*entryModel)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	// Create indexes.
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_pulse_pref_entries_ns_key ON pulse_pref_entries (namespace, key)",
		"CREATE INDEX IF NOT EXISTS idx_pulse_pref_entries_ns ON pulse_pref_entries (namespace)",
	}
	for _, ddl := range indexes {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}

	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SetEntry(ctx context.Context, e *prefs.Entry) error {
	m := toEntryModel(e)
	_, err := s.db.NewInsert().
		Model(m).
		On("CONFLICT (namespace, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) GetEntry(ctx context.Context, namespace, key string) (*prefs.Entry, error) {
	m := new(entryModel)
	err := s.db.NewSelect().
		Model(m).
		Where("namespace = ?", namespace).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pulse.ErrPrefNotFound
		}
		return nil, err
	}
	return fromEntryModel(m)
}

func (s *Store) DeleteEntry(ctx context.Context, namespace, key string) error {
	res, err := s.db.NewDelete().
		Model((*entryModel)(nil)).
		Where("namespace = ?", namespace).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return pulse.ErrPrefNotFound
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, namespace string, opts prefs.ListOpts) ([]*prefs.Entry, error) {
	var models []entryModel
	q := s.db.NewSelect().
		Model(&models).
		Where("namespace = ?", namespace)

	if opts.KeyPrefix != "" {
		q = q.Where(`key LIKE ? ESCAPE '\'`, likePrefix(opts.KeyPrefix))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("key ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*prefs.Entry, len(models))
	for i := range models {
		e, err := fromEntryModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

func (s *Store) ListNamespaces(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.NewSelect().
		Model((*entryModel)(nil)).
		ColumnExpr("DISTINCT namespace").
		OrderExpr("namespace ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (s *Store) ClearNamespace(ctx context.Context, namespace string) (int, error) {
	res, err := s.db.NewDelete().
		Model((*entryModel)(nil)).
		Where("namespace = ?", namespace).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (s *Store) CountEntries(ctx context.Context, namespace string) (int64, error) {
	count, err := s.db.NewSelect().
		Model((*entryModel)(nil)).
		Where("namespace = ?", namespace).
		Count(ctx)
	return int64(count), err
}

// likePrefix escapes LIKE metacharacters in a literal prefix and appends
// the wildcard.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
