package prefs

import (
	"time"

	"github.com/xraph/pulse/id"
	"github.com/xraph/pulse/internal/entity"
	"github.com/xraph/pulse/value"
)

// Entry is one stored preference: a typed value under a namespace and key.
type Entry struct {
	entity.Entity

	// ID is the unique TypeID for this entry.
	ID id.ID `json:"id"`

	// Namespace groups related preferences, typically one per screen or
	// feature.
	Namespace string `json:"namespace"`

	// Key identifies the preference within its namespace.
	Key string `json:"key"`

	// Value is the typed preference value.
	Value value.Value `json:"value"`
}

// Op enumerates the kinds of preference change.
type Op string

const (
	OpSet    Op = "set"
	OpDelete Op = "delete"
	OpClear  Op = "clear"
)

// ChangeEvent is published through the relay after every successful
// mutation. For OpClear, Key is empty and Value is the zero Value.
type ChangeEvent struct {
	Namespace string      `json:"namespace"`
	Key       string      `json:"key,omitempty"`
	Value     value.Value `json:"value"`
	Op        Op          `json:"op"`
	At        time.Time   `json:"at"`
}
