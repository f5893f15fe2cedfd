// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/graph"
)

// Sentinel errors for persistence.
var (
	// ErrNotFound indicates an unknown graph name or preset id.
	ErrNotFound = errors.New("store: not found")

	// ErrInvalidName indicates an empty graph name or one containing '/'.
	ErrInvalidName = errors.New("store: invalid graph name")

	// ErrInvalidPreset indicates a preset that failed validation.
	ErrInvalidPreset = errors.New("store: invalid preset")

	// ErrChecksum indicates a stored snapshot whose checksum no longer matches.
	ErrChecksum = errors.New("store: snapshot checksum mismatch")
)

const (
	graphPrefix  = "graph/"
	presetPrefix = "preset/"
)

// SavedGraph is one named snapshot.
type SavedGraph struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	SavedAt  time.Time      `json:"savedAt"`
	Snapshot graph.Snapshot `json:"snapshot"`
	// Checksum is the hex blake3-256 of the canonical snapshot JSON.
	Checksum string `json:"checksum"`
}

// Summary is one manifest entry.
type Summary struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	SavedAt time.Time `json:"savedAt"`
	Nodes   int       `json:"nodes"`
	Edges   int       `json:"edges"`
}

// Preset is a named, coloured algorithm kept for quick reuse.
type Preset struct {
	ID        uuid.UUID `json:"id"`
	Algorithm string    `json:"algorithm" validate:"required"`
	Name      string    `json:"name" validate:"required,max=128"`
	Color     string    `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

var presetValidator = validator.New()

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for SavedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store is a BadgerDB-backed catalogue of saved graphs and presets.
// It is safe for concurrent use.
type Store struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

// Open opens the database described by cfg.
func Open(cfg Config, opts ...Option) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, log: slog.New(slog.DiscardHandler), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

func checkName(name string) error {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return nil
}

// Checksum returns the hex blake3-256 digest of snap's JSON encoding.
func Checksum(snap graph.Snapshot) (string, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(b)

	return hex.EncodeToString(sum[:]), nil
}

// Save stores snap under name, replacing any previous graph of that name.
// A replaced graph keeps its ID.
func (s *Store) Save(ctx context.Context, name string, snap graph.Snapshot) (SavedGraph, error) {
	if err := ctx.Err(); err != nil {
		return SavedGraph{}, err
	}
	if err := checkName(name); err != nil {
		return SavedGraph{}, err
	}
	sum, err := Checksum(snap)
	if err != nil {
		return SavedGraph{}, fmt.Errorf("store: encode %q: %w", name, err)
	}
	rec := SavedGraph{Name: name, SavedAt: s.now().UTC(), Snapshot: snap, Checksum: sum}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(graphPrefix + name)
		var prev SavedGraph
		switch err := getJSON(txn, key, &prev); {
		case err == nil:
			rec.ID = prev.ID
		case errors.Is(err, ErrNotFound):
			rec.ID = uuid.New()
		default:
			return err
		}
		return setJSON(txn, key, rec)
	})
	if err != nil {
		return SavedGraph{}, fmt.Errorf("store: save %q: %w", name, err)
	}
	s.log.Info("graph saved",
		slog.String("name", name),
		slog.String("id", rec.ID.String()),
		slog.Int("nodes", len(snap.Nodes)),
		slog.Int("edges", len(snap.Edges)))

	return rec, nil
}

// Load returns the graph saved under name, verifying its checksum.
func (s *Store) Load(ctx context.Context, name string) (SavedGraph, error) {
	if err := ctx.Err(); err != nil {
		return SavedGraph{}, err
	}
	if err := checkName(name); err != nil {
		return SavedGraph{}, err
	}
	var rec SavedGraph
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, []byte(graphPrefix+name), &rec)
	})
	if err != nil {
		return SavedGraph{}, fmt.Errorf("store: load %q: %w", name, err)
	}
	if err = verify(rec); err != nil {
		return SavedGraph{}, err
	}

	return rec, nil
}

func verify(rec SavedGraph) error {
	sum, err := Checksum(rec.Snapshot)
	if err != nil {
		return err
	}
	if rec.Checksum != "" && sum != rec.Checksum {
		return fmt.Errorf("%w: %q", ErrChecksum, rec.Name)
	}

	return nil
}

// Delete removes the graph saved under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(name); err != nil {
		return err
	}
	key := []byte(graphPrefix + name)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return mapErr(err)
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}

	return nil
}

// List returns the manifest of saved graphs, sorted by name.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Summary
	err := s.scan(graphPrefix, func(v []byte) error {
		var rec SavedGraph
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		out = append(out, Summary{
			ID:      rec.ID,
			Name:    rec.Name,
			SavedAt: rec.SavedAt,
			Nodes:   len(rec.Snapshot.Nodes),
			Edges:   len(rec.Snapshot.Edges),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}

	return out, nil
}

// SavePreset validates and stores p. A zero ID is replaced by a new UUID.
func (s *Store) SavePreset(ctx context.Context, p Preset) (Preset, error) {
	if err := ctx.Err(); err != nil {
		return Preset{}, err
	}
	if err := presetValidator.Struct(p); err != nil {
		return Preset{}, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	parsed, err := alg.Parse(p.Algorithm)
	if err != nil {
		return Preset{}, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	p.Algorithm = parsed.String()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, []byte(presetPrefix+p.ID.String()), p)
	})
	if err != nil {
		return Preset{}, fmt.Errorf("store: save preset %q: %w", p.Name, err)
	}

	return p, nil
}

// Presets returns every preset, ordered by id.
func (s *Store) Presets(ctx context.Context) ([]Preset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Preset
	err := s.scan(presetPrefix, func(v []byte) error {
		var p Preset
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: presets: %w", err)
	}

	return out, nil
}

// DeletePreset removes preset id.
func (s *Store) DeletePreset(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := []byte(presetPrefix + id.String())
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return mapErr(err)
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("store: delete preset %s: %w", id, err)
	}

	return nil
}

func (s *Store) scan(prefix string, fn func(v []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

func mapErr(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}

	return err
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return mapErr(err)
	}

	return item.Value(func(b []byte) error { return json.Unmarshal(b, v) })
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return txn.Set(key, b)
}
