package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/prefs"
)

// SetEntry creates or updates the entry for a namespace and key.
func (s *Store) SetEntry(ctx context.Context, e *prefs.Entry) error {
	m := toEntryModel(e)
	m.UpdatedAt = now()

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"namespace": m.Namespace, "key": m.Key}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"value":      m.Value,
				"updated_at": m.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"_id":        m.ID,
				"namespace":  m.Namespace,
				"key":        m.Key,
				"created_at": m.CreatedAt,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("pulse/mongo: set entry: %w", err)
	}

	return nil
}

// GetEntry returns the entry for a namespace and key.
func (s *Store) GetEntry(ctx context.Context, namespace, key string) (*prefs.Entry, error) {
	var m entryModel

	err := s.mdb.NewFind(&m).
		Filter(bson.M{"namespace": namespace, "key": key}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, pulse.ErrPrefNotFound
		}

		return nil, fmt.Errorf("pulse/mongo: get entry: %w", err)
	}

	return fromEntryModel(&m)
}

// DeleteEntry removes the entry for a namespace and key.
func (s *Store) DeleteEntry(ctx context.Context, namespace, key string) error {
	res, err := s.mdb.NewDelete((*entryModel)(nil)).
		Filter(bson.M{"namespace": namespace, "key": key}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("pulse/mongo: delete entry: %w", err)
	}

	if res.DeletedCount() == 0 {
		return pulse.ErrPrefNotFound
	}

	return nil
}

// ListEntries returns the entries of a namespace in key order.
func (s *Store) ListEntries(ctx context.Context, namespace string, opts prefs.ListOpts) ([]*prefs.Entry, error) {
	var models []entryModel

	filter := bson.M{"namespace": namespace}
	if opts.KeyPrefix != "" {
		filter["key"] = bson.M{"$regex": "^" + regexp.QuoteMeta(opts.KeyPrefix)}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "key", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}

	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("pulse/mongo: list entries: %w", err)
	}

	result := make([]*prefs.Entry, 0, len(models))

	for i := range models {
		e, err := fromEntryModel(&models[i])
		if err != nil {
			return nil, err
		}

		result = append(result, e)
	}

	return result, nil
}

// ListNamespaces returns every namespace holding at least one entry.
func (s *Store) ListNamespaces(ctx context.Context) ([]string, error) {
	var names []string

	res := s.mdb.Collection(colEntries).Distinct(ctx, "namespace", bson.M{})
	if err := res.Decode(&names); err != nil {
		return nil, fmt.Errorf("pulse/mongo: list namespaces: %w", err)
	}

	sort.Strings(names)
	return names, nil
}

// ClearNamespace removes every entry in a namespace and returns how many
// were removed.
func (s *Store) ClearNamespace(ctx context.Context, namespace string) (int, error) {
	res, err := s.mdb.NewDelete((*entryModel)(nil)).
		Filter(bson.M{"namespace": namespace}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("pulse/mongo: clear namespace: %w", err)
	}

	return int(res.DeletedCount()), nil
}

// CountEntries returns the number of entries in a namespace.
func (s *Store) CountEntries(ctx context.Context, namespace string) (int64, error) {
	count, err := s.mdb.NewFind((*entryModel)(nil)).
		Filter(bson.M{"namespace": namespace}).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("pulse/mongo: count entries: %w", err)
	}

	return count, nil
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
