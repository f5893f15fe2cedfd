// SPDX-License-Identifier: MIT

// File: source.go
// Role: definition providers and the init-once Lazy wrapper.
//
// Concurrency:
//   - Lazy is safe for concurrent use; the underlying Provider runs at most once
//     per Lazy lifetime.
package puzzle

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Provider supplies a puzzle Definition. Implementations may block (file or
// network I/O) and should honour ctx.
type Provider interface {
	Definition(ctx context.Context) (*Definition, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*Definition, error)

// Definition calls f(ctx).
func (f ProviderFunc) Definition(ctx context.Context) (*Definition, error) { return f(ctx) }

// Static returns a Provider yielding def as-is.
func Static(def *Definition) Provider {
	return ProviderFunc(func(context.Context) (*Definition, error) { return def, nil })
}

// CubeProvider returns a Provider generating the NxN cube definition.
func CubeProvider(n int) Provider {
	return ProviderFunc(func(ctx context.Context) (*Definition, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		return Cube(n)
	})
}

// FileProvider returns a Provider reading a YAML definition from path.
func FileProvider(path string) Provider {
	return ProviderFunc(func(ctx context.Context) (*Definition, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open definition %s: %w", path, err)
		}
		defer f.Close()

		return LoadYAML(f)
	})
}

// LoadYAML decodes and validates a Definition.
func LoadYAML(r io.Reader) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidDefinition, err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// Lazy loads a Definition at most once and caches it until Close.
//
// Behavior highlights:
//   - The first Definition call runs the wrapped Provider; later calls return the
//     cached result, including a cached failure wrapped in ErrDefinitionLoad.
//   - Close drops the cached definition; subsequent calls return ErrClosed.
type Lazy struct {
	src    Provider
	once   sync.Once
	mu     sync.RWMutex
	def    *Definition
	err    error
	closed bool
}

// NewLazy wraps src.
func NewLazy(src Provider) *Lazy { return &Lazy{src: src} }

// Definition implements Provider.
func (l *Lazy) Definition(ctx context.Context) (*Definition, error) {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	l.once.Do(func() {
		def, err := l.src.Definition(ctx)
		if err == nil {
			err = def.Validate()
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		if err != nil {
			l.err = fmt.Errorf("%w: %w", ErrDefinitionLoad, err)
			return
		}
		l.def = def
	})

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}

	return l.def, l.err
}

// Loaded reports whether initialization has completed successfully.
func (l *Lazy) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.def != nil && !l.closed
}

// Close releases the cached definition. It is idempotent.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.def = nil

	return nil
}
