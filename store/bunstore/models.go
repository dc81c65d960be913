package bunstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/xraph/pulse/id"
	"github.com/xraph/pulse/internal/entity"
	"github.com/xraph/pulse/prefs"
	"github.com/xraph/pulse/value"
)

// --- Preference entry models ---

type entryModel struct {
	bun.BaseModel `bun:"table:pulse_pref_entries"`

	ID        string          `bun:"id,pk"`
	Namespace string          `bun:"namespace,notnull"`
	Key       string          `bun:"key,notnull"`
	Value     json.RawMessage `bun:"value,type:jsonb"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

func toEntryModel(e *prefs.Entry) *entryModel {
	raw, _ := json.Marshal(e.Value) //nolint:errcheck // best-effort

	return &entryModel{
		ID:        e.ID.String(),
		Namespace: e.Namespace,
		Key:       e.Key,
		Value:     raw,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromEntryModel(m *entryModel) (*prefs.Entry, error) {
	entryID, err := id.ParsePrefID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("parse entry ID %q: %w", m.ID, err)
	}

	var v value.Value
	if len(m.Value) > 0 {
		if err := json.Unmarshal(m.Value, &v); err != nil {
			return nil, fmt.Errorf("decode value for %s/%s: %w", m.Namespace, m.Key, err)
		}
	}

	return &prefs.Entry{
		Entity: entity.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:        entryID,
		Namespace: m.Namespace,
		Key:       m.Key,
		Value:     v,
	}, nil
}
