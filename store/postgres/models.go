package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/pulse/id"
	"github.com/xraph/pulse/internal/entity"
	"github.com/xraph/pulse/prefs"
	"github.com/xraph/pulse/value"
)

// --- Preference entry models ---

type entryModel struct {
	grove.BaseModel `grove:"table:pulse_pref_entries"`

	ID        string          `grove:"id,pk"`
	Namespace string          `grove:"namespace"`
	Key       string          `grove:"key"`
	Value     json.RawMessage `grove:"value,type:jsonb"`
	CreatedAt time.Time       `grove:"created_at"`
	UpdatedAt time.Time       `grove:"updated_at"`
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
