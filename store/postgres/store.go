package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/prefs"
	pulsestore "github.com/xraph/pulse/store"
)

// compile-time interface check
var _ pulsestore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("pulse/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("pulse/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SetEntry(ctx context.Context, e *prefs.Entry) error {
	m := toEntryModel(e)
	_, err := s.pg.NewInsert(m).
		OnConflict("(namespace, key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("pulse/postgres: set entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, namespace, key string) (*prefs.Entry, error) {
	m := new(entryModel)
	err := s.pg.NewSelect(m).
		Where("namespace = $1", namespace).
		Where("key = $2", key).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, pulse.ErrPrefNotFound
		}
		return nil, err
	}
	return fromEntryModel(m)
}

func (s *Store) DeleteEntry(ctx context.Context, namespace, key string) error {
	res, err := s.pg.NewDelete((*entryModel)(nil)).
		Where("namespace = $1", namespace).
		Where("key = $2", key).
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
	q := s.pg.NewSelect(&models).Where("namespace = $1", namespace)

	if opts.KeyPrefix != "" {
		q = q.Where(`key LIKE $2 ESCAPE '\'`, likePrefix(opts.KeyPrefix))
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
	var models []entryModel
	err := s.pg.NewRaw(`
		SELECT DISTINCT namespace FROM pulse_pref_entries ORDER BY namespace ASC
	`).Scan(ctx, &models)
	if err != nil {
		return nil, fmt.Errorf("pulse/postgres: list namespaces: %w", err)
	}

	names := make([]string, len(models))
	for i := range models {
		names[i] = models[i].Namespace
	}
	return names, nil
}

func (s *Store) ClearNamespace(ctx context.Context, namespace string) (int, error) {
	res, err := s.pg.NewDelete((*entryModel)(nil)).
		Where("namespace = $1", namespace).
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
	count, err := s.pg.NewSelect((*entryModel)(nil)).
		Where("namespace = $1", namespace).
		Count(ctx)
	return count, err
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// likePrefix escapes LIKE metacharacters in a literal prefix and appends
// the wildcard.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
