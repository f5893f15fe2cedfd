// SPDX-License-Identifier: MIT

// Package config loads algraph settings from YAML with deterministic
// defaults and struct-tag validation.
//
// Every field has a default, so an empty file (or no file) is valid:
//
//	expand:
//	  repositionOnConfluence: true
//	  matchIfAUF: true
//	  createConfluenceEdges: false
//	  deleteDuplicateOnConfluence: false
//	  adjustmentFace: U
//	  clusterFace: U
//	  spacing: 500
//	  nudge: {x: 60, y: 60}
//	puzzle:
//	  size: 3
//	  definitionFile: ""   # YAML puzzle definition; overrides size
//	store:
//	  path: ~/.algraph/db
//	  inMemory: false
//	log:
//	  level: info          # debug | info | warn | error
//	  format: text         # text | json
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/algraph/expand"
	"github.com/katalvlaran/algraph/puzzle"
	"github.com/katalvlaran/algraph/store"
)

// ErrInvalid indicates settings that failed validation.
var ErrInvalid = errors.New("config: invalid settings")

// Settings is the full configuration tree.
type Settings struct {
	Expand expand.Config `yaml:"expand" json:"expand"`
	Puzzle PuzzleConfig  `yaml:"puzzle" json:"puzzle"`
	Store  StoreConfig   `yaml:"store" json:"store"`
	Log    LogConfig     `yaml:"log" json:"log"`
}

// PuzzleConfig selects the puzzle definition.
type PuzzleConfig struct {
	Size           int    `yaml:"size" json:"size" validate:"min=2,max=7"`
	DefinitionFile string `yaml:"definitionFile" json:"definitionFile"`
}

// StoreConfig locates the saved-graph database.
type StoreConfig struct {
	Path     string `yaml:"path" json:"path" validate:"required_without=InMemory"`
	InMemory bool   `yaml:"inMemory" json:"inMemory"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

var settingsValidator = validator.New()

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Expand: expand.DefaultConfig(),
		Puzzle: PuzzleConfig{Size: 3},
		Store:  StoreConfig{Path: defaultStorePath()},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".algraph", "db")
	}

	return filepath.Join(home, ".algraph", "db")
}

// Validate checks every section.
func (s Settings) Validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// Parse overlays the YAML document in r on Default and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Load reads path; an empty path yields Default.
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	return Parse(bytes.NewReader(b))
}

// Provider returns the puzzle definition source, wrapped for one-time loading.
func (s Settings) Provider() *puzzle.Lazy {
	if s.Puzzle.DefinitionFile != "" {
		return puzzle.NewLazy(puzzle.FileProvider(s.Puzzle.DefinitionFile))
	}

	return puzzle.NewLazy(puzzle.CubeProvider(s.Puzzle.Size))
}

// StoreOptions converts the store section.
func (s Settings) StoreOptions(l *slog.Logger) store.Config {
	if s.Store.InMemory {
		cfg := store.InMemoryConfig()
		cfg.Logger = l
		return cfg
	}
	cfg := store.DefaultConfig(s.Store.Path)
	cfg.Logger = l

	return cfg
}

// Logger builds the slog logger described by the log section.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(s.Log.Level)}
	if s.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func level(name string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}

	return l
}
