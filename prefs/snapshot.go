package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/id"
	"github.com/xraph/pulse/signature"
	"github.com/xraph/pulse/value"
)

// Snapshot is a point-in-time export of one or more namespaces.
type Snapshot struct {
	// ID is the unique TypeID for this snapshot.
	ID id.ID `json:"id"`

	// CreatedAt records when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`

	// Namespaces maps namespace to key to value.
	Namespaces map[string]map[string]value.Value `json:"namespaces"`
}

// ImportMode controls how Import applies a snapshot over existing data.
type ImportMode int

const (
	// Merge upserts snapshot entries over existing ones, keeping entries
	// the snapshot does not mention.
	Merge ImportMode = iota

	// Replace clears each snapshot namespace before applying its entries.
	Replace
)

// signedEnvelope is the wire form produced by EncodeSigned.
type signedEnvelope struct {
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Signature string          `json:"signature"`
}

// Export captures the current entries of the given namespaces into a
// Snapshot. With no namespaces named, every namespace is exported.
func (svc *Service) Export(ctx context.Context, namespaces ...string) (snap *Snapshot, err error) {
	defer func() { svc.record("export", err) }()

	if len(namespaces) == 0 {
		all, err := svc.store.ListNamespaces(ctx)
		if err != nil {
			return nil, err
		}
		namespaces = all
	}

	snap = &Snapshot{
		ID:         id.NewSnapshotID(),
		CreatedAt:  now(),
		Namespaces: make(map[string]map[string]value.Value, len(namespaces)),
	}
	for _, ns := range namespaces {
		entries, err := svc.store.ListEntries(ctx, ns, ListOpts{})
		if err != nil {
			return nil, err
		}
		m := make(map[string]value.Value, len(entries))
		for _, e := range entries {
			m[e.Key] = e.Value
		}
		snap.Namespaces[ns] = m
	}
	return snap, nil
}

// Import applies a snapshot. Namespaces are applied concurrently; within a
// namespace, entries are applied in key order and each publishes its
// ChangeEvent.
func (svc *Service) Import(ctx context.Context, snap *Snapshot, mode ImportMode) (err error) {
	defer func() { svc.record("import", err) }()

	if snap == nil {
		return &ValidationError{Field: "snapshot", Message: "required"}
	}

	g, gctx := errgroup.WithContext(ctx)
	for ns, entries := range snap.Namespaces {
		g.Go(func() error {
			if mode == Replace {
				if _, err := svc.Clear(gctx, ns); err != nil {
					return fmt.Errorf("prefs: clear %s: %w", ns, err)
				}
			}
			for _, key := range sortedKeys(entries) {
				if err := svc.Set(gctx, ns, key, entries[key]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// EncodeSigned serializes snap and signs it with the service signing
// secret. The envelope embeds the payload, a unix timestamp, and a v1 HMAC
// signature over "{timestamp}.{payload}".
func (svc *Service) EncodeSigned(snap *Snapshot) ([]byte, error) {
	if svc.secret == "" {
		return nil, &ValidationError{Field: "signing_secret", Message: "required"}
	}
	if snap == nil {
		return nil, &ValidationError{Field: "snapshot", Message: "required"}
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("prefs: encode snapshot: %w", err)
	}

	ts := now().Unix()
	return json.Marshal(signedEnvelope{
		Payload:   payload,
		Timestamp: ts,
		Signature: signature.Sign(payload, svc.secret, ts),
	})
}

// ImportSigned verifies, validates, and applies an envelope produced by
// EncodeSigned. Verification order: timestamp tolerance, constant-time
// signature check, JSON Schema validation, then Import.
func (svc *Service) ImportSigned(ctx context.Context, data []byte, mode ImportMode) error {
	if svc.secret == "" {
		return &ValidationError{Field: "signing_secret", Message: "required"}
	}

	var env signedEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: decode envelope: %v", pulse.ErrSnapshotInvalid, err)
	}

	drift := time.Duration(now().Unix()-env.Timestamp) * time.Second
	if drift < 0 {
		drift = -drift
	}
	if drift > svc.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", pulse.ErrSignatureInvalid)
	}

	if !signature.Verify(env.Payload, svc.secret, env.Timestamp, env.Signature) {
		return pulse.ErrSignatureInvalid
	}

	if err := svc.validator.Validate(env.Payload); err != nil {
		return fmt.Errorf("%w: %v", pulse.ErrSnapshotInvalid, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(env.Payload, &snap); err != nil {
		return fmt.Errorf("%w: decode payload: %v", pulse.ErrSnapshotInvalid, err)
	}
	return svc.Import(ctx, &snap, mode)
}

func sortedKeys(m map[string]value.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
