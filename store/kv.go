package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/archsketch/archsketch/spec"
)

// DefaultBucket is the JetStream KV bucket for spec snapshots.
const DefaultBucket = "archsketch-specs"

// KVStore is a SpecStore backed by a NATS JetStream key-value bucket.
type KVStore struct {
	kv     jetstream.KeyValue
	logger *slog.Logger
}

// NewKVStore opens (or creates) the bucket and returns a store on it.
func NewKVStore(ctx context.Context, js jetstream.JetStream, bucket string, logger *slog.Logger) (*KVStore, error) {
	if js == nil {
		return nil, fmt.Errorf("JetStream context required")
	}
	if bucket == "" {
		bucket = DefaultBucket
	}
	if logger == nil {
		logger = slog.Default()
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "archsketch spec snapshots",
		History:     5,
	})
	if err != nil {
		return nil, fmt.Errorf("open KV bucket %q: %w", bucket, err)
	}

	return &KVStore{kv: kv, logger: logger}, nil
}

// Save implements SpecStore.
func (s *KVStore) Save(ctx context.Context, name string, sp *spec.Spec) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	data, err := encodeSpec(sp)
	if err != nil {
		return err
	}

	key := sanitizeKey(name)
	if _, err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("store spec %q: %w", name, err)
	}

	s.logger.Debug("spec snapshot stored", "name", name, "nodes", len(sp.Nodes))
	return nil
}

// Load implements SpecStore.
func (s *KVStore) Load(ctx context.Context, name string) (*spec.Spec, error) {
	entry, err := s.kv.Get(ctx, sanitizeKey(name))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load spec %q: %w", name, err)
	}
	return decodeSpec(entry.Value())
}

// List implements SpecStore.
func (s *KVStore) List(ctx context.Context) ([]string, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}

	var names []string
	for key := range lister.Keys() {
		names = append(names, key)
	}
	sort.Strings(names)
	return names, nil
}

// sanitizeKey maps a display name onto the KV key character set.
func sanitizeKey(name string) string {
	key := strings.TrimSpace(name)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "/", "_")
	if key == "" {
		key = "default"
	}
	return key
}

// encodeSpec serializes a snapshot.
func encodeSpec(s *spec.Spec) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}
	return data, nil
}

// decodeSpec parses a snapshot and re-validates it: persisted data is a
// trust boundary like any other.
func decodeSpec(data []byte) (*spec.Spec, error) {
	var s spec.Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("stored spec is invalid: %w", err)
	}
	return &s, nil
}
