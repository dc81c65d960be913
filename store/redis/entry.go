package redis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/id"
	"github.com/xraph/pulse/internal/entity"
	"github.com/xraph/pulse/prefs"
	"github.com/xraph/pulse/value"
)

// entryModel is the JSON representation stored in Redis.
type entryModel struct {
	ID        string      `json:"id"`
	Namespace string      `json:"namespace"`
	Key       string      `json:"key"`
	Value     value.Value `json:"value"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func toEntryModel(e *prefs.Entry) *entryModel {
	return &entryModel{
		ID:        e.ID.String(),
		Namespace: e.Namespace,
		Key:       e.Key,
		Value:     e.Value,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromEntryModel(m *entryModel) (*prefs.Entry, error) {
	entryID, err := id.ParsePrefID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse entry ID %q: %w", m.ID, err)
	}
	return &prefs.Entry{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        entryID,
		Namespace: m.Namespace,
		Key:       m.Key,
		Value:     m.Value,
	}, nil
}

func (s *Store) SetEntry(ctx context.Context, e *prefs.Entry) error {
	key := entryKey(e.Namespace, e.Key)

	var existing entryModel
	getErr := s.getEntity(ctx, key, &existing)
	if getErr != nil && !isNotFound(getErr) {
		return fmt.Errorf("pulse/redis: set entry get: %w", getErr)
	}

	m := toEntryModel(e)
	if getErr == nil {
		// Updates keep the original identity and creation time.
		prevID, err := id.ParsePrefID(existing.ID)
		if err != nil {
			return fmt.Errorf("pulse/redis: parse entry ID %q: %w", existing.ID, err)
		}
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
		m.UpdatedAt = now()

		e.ID = prevID
		e.CreatedAt = m.CreatedAt
		e.UpdatedAt = m.UpdatedAt
	}

	if err := s.setEntity(ctx, key, m); err != nil {
		return fmt.Errorf("pulse/redis: set entry: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.SAdd(ctx, keySetKey(e.Namespace), e.Key)
	pipe.SAdd(ctx, sNamespaces, e.Namespace)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pulse/redis: set entry indexes: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, namespace, key string) (*prefs.Entry, error) {
	var m entryModel
	if err := s.getEntity(ctx, entryKey(namespace, key), &m); err != nil {
		if isNotFound(err) {
			return nil, pulse.ErrPrefNotFound
		}
		return nil, fmt.Errorf("pulse/redis: get entry: %w", err)
	}
	return fromEntryModel(&m)
}

func (s *Store) DeleteEntry(ctx context.Context, namespace, key string) error {
	ekey := entryKey(namespace, key)

	var m entryModel
	if err := s.getEntity(ctx, ekey, &m); err != nil {
		if isNotFound(err) {
			return pulse.ErrPrefNotFound
		}
		return fmt.Errorf("pulse/redis: delete entry get: %w", err)
	}

	if err := s.kv.Delete(ctx, ekey); err != nil {
		return fmt.Errorf("pulse/redis: delete entry: %w", err)
	}

	if err := s.rdb.SRem(ctx, keySetKey(namespace), key).Err(); err != nil {
		return fmt.Errorf("pulse/redis: delete entry index: %w", err)
	}

	// Drop the namespace from the index once its last key is gone.
	n, err := s.rdb.SCard(ctx, keySetKey(namespace)).Result()
	if err != nil {
		return fmt.Errorf("pulse/redis: delete entry card: %w", err)
	}
	if n == 0 {
		if err := s.rdb.SRem(ctx, sNamespaces, namespace).Err(); err != nil {
			return fmt.Errorf("pulse/redis: delete namespace index: %w", err)
		}
	}
	return nil
}

func (s *Store) ListEntries(ctx context.Context, namespace string, opts prefs.ListOpts) ([]*prefs.Entry, error) {
	keys, err := s.rdb.SMembers(ctx, keySetKey(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("pulse/redis: list entries: %w", err)
	}
	sort.Strings(keys)

	result := make([]*prefs.Entry, 0, len(keys))
	for _, k := range keys {
		if opts.KeyPrefix != "" && !strings.HasPrefix(k, opts.KeyPrefix) {
			continue
		}
		var m entryModel
		if err := s.getEntity(ctx, entryKey(namespace, k), &m); err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		e, err := fromEntryModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}

	return applyPagination(result, opts.Offset, opts.Limit), nil
}

func (s *Store) ListNamespaces(ctx context.Context) ([]string, error) {
	names, err := s.rdb.SMembers(ctx, sNamespaces).Result()
	if err != nil {
		return nil, fmt.Errorf("pulse/redis: list namespaces: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) ClearNamespace(ctx context.Context, namespace string) (int, error) {
	keys, err := s.rdb.SMembers(ctx, keySetKey(namespace)).Result()
	if err != nil {
		return 0, fmt.Errorf("pulse/redis: clear namespace: %w", err)
	}

	for _, k := range keys {
		if err := s.kv.Delete(ctx, entryKey(namespace, k)); err != nil && !isNotFound(err) {
			return 0, fmt.Errorf("pulse/redis: clear namespace delete: %w", err)
		}
	}

	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, keySetKey(namespace))
	pipe.SRem(ctx, sNamespaces, namespace)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("pulse/redis: clear namespace indexes: %w", err)
	}
	return len(keys), nil
}

func (s *Store) CountEntries(ctx context.Context, namespace string) (int64, error) {
	n, err := s.rdb.SCard(ctx, keySetKey(namespace)).Result()
	if err != nil {
		return 0, fmt.Errorf("pulse/redis: count entries: %w", err)
	}
	return n, nil
}
