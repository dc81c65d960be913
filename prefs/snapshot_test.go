package prefs_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/xraph/pulse"
	"github.com/xraph/pulse/prefs"
	"github.com/xraph/pulse/signature"
	"github.com/xraph/pulse/store/memory"
)

const testSecret = "pssec_snapshot_test_secret"

func signedService(t *testing.T, opts ...prefs.Option) *prefs.Service {
	t.Helper()
	svc, err := prefs.NewService(append([]prefs.Option{
		prefs.WithStore(memory.New()),
		prefs.WithSigningSecret(testSecret),
	}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestExportImportMerge(t *testing.T) {
	src := signedService(t)
	if err := src.Set(ctx(), "ui", "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if err := src.Set(ctx(), "session", "user_id", 42); err != nil {
		t.Fatal(err)
	}

	snap, err := src.Export(ctx())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Namespaces) != 2 {
		t.Fatalf("expected 2 namespaces in snapshot, got %d", len(snap.Namespaces))
	}

	dst := signedService(t)
	// Pre-existing entry outside the snapshot keys survives a merge.
	if err := dst.Set(ctx(), "ui", "zoom", 1.5); err != nil {
		t.Fatal(err)
	}

	if err := dst.Import(ctx(), snap, prefs.Merge); err != nil {
		t.Fatal(err)
	}

	v, err := dst.Get(ctx(), "ui", "theme")
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := v.AsString(); s != "dark" {
		t.Fatalf("got theme %q", s)
	}
	if _, err := dst.Get(ctx(), "ui", "zoom"); err != nil {
		t.Fatalf("merge should keep existing entries, got %v", err)
	}
	v, _ = dst.Get(ctx(), "session", "user_id")
	if n, _ := v.AsInt(); n != 42 {
		t.Fatalf("got user_id %d", n)
	}
}

func TestImportReplaceClearsNamespace(t *testing.T) {
	src := signedService(t)
	if err := src.Set(ctx(), "ui", "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	snap, err := src.Export(ctx(), "ui")
	if err != nil {
		t.Fatal(err)
	}

	dst := signedService(t)
	if err := dst.Set(ctx(), "ui", "zoom", 1.5); err != nil {
		t.Fatal(err)
	}

	if err := dst.Import(ctx(), snap, prefs.Replace); err != nil {
		t.Fatal(err)
	}

	if _, err := dst.Get(ctx(), "ui", "zoom"); !errors.Is(err, pulse.ErrPrefNotFound) {
		t.Fatalf("replace should drop existing entries, got %v", err)
	}
	if _, err := dst.Get(ctx(), "ui", "theme"); err != nil {
		t.Fatal(err)
	}
}

func TestExportNamedNamespace(t *testing.T) {
	src := signedService(t)
	if err := src.Set(ctx(), "ui", "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if err := src.Set(ctx(), "session", "user_id", 1); err != nil {
		t.Fatal(err)
	}

	snap, err := src.Export(ctx(), "ui")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Namespaces) != 1 {
		t.Fatalf("expected only ui, got %v", snap.Namespaces)
	}
	if _, ok := snap.Namespaces["ui"]; !ok {
		t.Fatal("expected ui namespace in snapshot")
	}
}

func TestEncodeSignedImportSignedRoundTrip(t *testing.T) {
	src := signedService(t)
	if err := src.Set(ctx(), "ui", "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if err := src.Set(ctx(), "ui", "tab_index", 3); err != nil {
		t.Fatal(err)
	}

	snap, err := src.Export(ctx())
	if err != nil {
		t.Fatal(err)
	}
	data, err := src.EncodeSigned(snap)
	if err != nil {
		t.Fatal(err)
	}

	dst := signedService(t)
	if err := dst.ImportSigned(ctx(), data, prefs.Merge); err != nil {
		t.Fatal(err)
	}

	v, err := dst.Get(ctx(), "ui", "tab_index")
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := v.AsInt(); n != 3 {
		t.Fatalf("got tab_index %d", n)
	}
}

func TestImportSignedRejectsTampering(t *testing.T) {
	src := signedService(t)
	if err := src.Set(ctx(), "ui", "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	snap, err := src.Export(ctx())
	if err != nil {
		t.Fatal(err)
	}
	data, err := src.EncodeSigned(snap)
	if err != nil {
		t.Fatal(err)
	}

	tampered := bytes.Replace(data, []byte(`"dark"`), []byte(`"lite"`), 1)
	if bytes.Equal(tampered, data) {
		t.Fatal("tampering had no effect on the envelope")
	}

	dst := signedService(t)
	if err := dst.ImportSigned(ctx(), tampered, prefs.Merge); !errors.Is(err, pulse.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestImportSignedRejectsWrongSecret(t *testing.T) {
	src := signedService(t)
	if err := src.Set(ctx(), "ui", "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	snap, err := src.Export(ctx())
	if err != nil {
		t.Fatal(err)
	}
	data, err := src.EncodeSigned(snap)
	if err != nil {
		t.Fatal(err)
	}

	dst, err := prefs.NewService(
		prefs.WithStore(memory.New()),
		prefs.WithSigningSecret("pssec_other_secret"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.ImportSigned(ctx(), data, prefs.Merge); !errors.Is(err, pulse.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestImportSignedRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"x","created_at":"2025-01-01T00:00:00Z","namespaces":{}}`)
	ts := time.Now().UTC().Add(-2 * time.Hour).Unix()
	env := map[string]any{
		"payload":   json.RawMessage(payload),
		"timestamp": ts,
		"signature": signature.Sign(payload, testSecret, ts),
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	svc := signedService(t, prefs.WithSignatureTolerance(time.Hour))
	if err := svc.ImportSigned(ctx(), data, prefs.Merge); !errors.Is(err, pulse.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestImportSignedRejectsInvalidSchema(t *testing.T) {
	// Correctly signed, but the payload is missing required fields.
	payload := []byte(`{"id":"snap_x"}`)
	ts := time.Now().UTC().Unix()
	env := map[string]any{
		"payload":   json.RawMessage(payload),
		"timestamp": ts,
		"signature": signature.Sign(payload, testSecret, ts),
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	svc := signedService(t)
	if err := svc.ImportSigned(ctx(), data, prefs.Merge); !errors.Is(err, pulse.ErrSnapshotInvalid) {
		t.Fatalf("expected ErrSnapshotInvalid, got %v", err)
	}
}

func TestEncodeSignedRequiresSecret(t *testing.T) {
	svc, err := prefs.NewService(prefs.WithStore(memory.New()))
	if err != nil {
		t.Fatal(err)
	}

	var verr *prefs.ValidationError
	if _, err := svc.EncodeSigned(&prefs.Snapshot{}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := svc.ImportSigned(ctx(), []byte(`{}`), prefs.Merge); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
