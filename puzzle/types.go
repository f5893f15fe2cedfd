// SPDX-License-Identifier: MIT

package puzzle

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"lukechampine.com/blake3"
)

// Sentinel errors for the puzzle state model.
var (
	// ErrUnknownMove indicates a move family the active definition does not define.
	ErrUnknownMove = errors.New("puzzle: unknown move")

	// ErrDefinitionLoad indicates the puzzle definition could not be produced.
	ErrDefinitionLoad = errors.New("puzzle: definition load failed")

	// ErrInvalidDefinition indicates a structurally inconsistent definition.
	ErrInvalidDefinition = errors.New("puzzle: invalid definition")

	// ErrClosed indicates use of a provider after Close.
	ErrClosed = errors.New("puzzle: provider closed")

	// ErrCubeSize indicates an unsupported NxN size.
	ErrCubeSize = errors.New("puzzle: unsupported cube size")
)

// OrbitDef names one orbit of interchangeable positions.
type OrbitDef struct {
	Name            string `yaml:"name" json:"name" validate:"required"`
	NumPieces       int    `yaml:"numPieces" json:"numPieces" validate:"min=1"`
	NumOrientations int    `yaml:"numOrientations" json:"numOrientations" validate:"min=1"`
}

// OrbitTransform is the effect of one move on one orbit.
// An empty Orientation means no orientation change.
type OrbitTransform struct {
	Permutation []int `yaml:"permutation" json:"permutation"`
	Orientation []int `yaml:"orientation,omitempty" json:"orientation,omitempty"`
}

// Transformation maps orbit names to their per-orbit effect.
// Orbits missing from the map are left untouched.
type Transformation map[string]OrbitTransform

// OrbitState is the content of one orbit in a pattern. Pieces may repeat
// when positions carry indistinguishable pieces (e.g. same-coloured stickers).
type OrbitState struct {
	Pieces      []int `yaml:"pieces" json:"pieces"`
	Orientation []int `yaml:"orientation,omitempty" json:"orientation,omitempty"`
}

// Definition is the fixed schema of a puzzle.
type Definition struct {
	Name           string                    `yaml:"name" json:"name" validate:"required"`
	Orbits         []OrbitDef                `yaml:"orbits" json:"orbits" validate:"required,min=1,dive"`
	Moves          map[string]Transformation `yaml:"moves" json:"moves" validate:"required,min=1"`
	DefaultPattern map[string]OrbitState     `yaml:"defaultPattern,omitempty" json:"defaultPattern,omitempty"`
}

// MoveFamilies returns the defined move families sorted ascending.
func (d *Definition) MoveFamilies() []string {
	out := make([]string, 0, len(d.Moves))
	for name := range d.Moves {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

var structValidator = validator.New()

// Validate checks struct tags and the orbit/permutation consistency of d.
//
// Implementation:
//   - Stage 1: Tag validation (required fields, positive sizes).
//   - Stage 2: Unique orbit names.
//   - Stage 3: Every move permutation is a bijection of the right length, with
//     orientations in range.
//   - Stage 4: The default pattern, when present, has matching lengths and
//     orientations in range.
func (d *Definition) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	if err := structValidator.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	orbits := make(map[string]OrbitDef, len(d.Orbits))
	for _, o := range d.Orbits {
		if _, dup := orbits[o.Name]; dup {
			return fmt.Errorf("%w: duplicate orbit %q", ErrInvalidDefinition, o.Name)
		}
		orbits[o.Name] = o
	}
	for _, family := range d.MoveFamilies() {
		for orbit, ot := range d.Moves[family] {
			od, ok := orbits[orbit]
			if !ok {
				return fmt.Errorf("%w: move %q references unknown orbit %q", ErrInvalidDefinition, family, orbit)
			}
			if err := checkPermutation(ot.Permutation, od.NumPieces); err != nil {
				return fmt.Errorf("%w: move %q orbit %q: %v", ErrInvalidDefinition, family, orbit, err)
			}
			if err := checkOrientation(ot.Orientation, od); err != nil {
				return fmt.Errorf("%w: move %q orbit %q: %v", ErrInvalidDefinition, family, orbit, err)
			}
		}
	}
	for orbit, st := range d.DefaultPattern {
		od, ok := orbits[orbit]
		if !ok {
			return fmt.Errorf("%w: default pattern references unknown orbit %q", ErrInvalidDefinition, orbit)
		}
		if len(st.Pieces) != od.NumPieces {
			return fmt.Errorf("%w: default pattern orbit %q has %d pieces, want %d",
				ErrInvalidDefinition, orbit, len(st.Pieces), od.NumPieces)
		}
		if err := checkOrientation(st.Orientation, od); err != nil {
			return fmt.Errorf("%w: default pattern orbit %q: %v", ErrInvalidDefinition, orbit, err)
		}
	}

	return nil
}

func checkPermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("permutation length %d, want %d", len(perm), n)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return fmt.Errorf("permutation is not a bijection on [0,%d)", n)
		}
		seen[p] = true
	}

	return nil
}

func checkOrientation(orient []int, od OrbitDef) error {
	if len(orient) == 0 {
		return nil
	}
	if len(orient) != od.NumPieces {
		return fmt.Errorf("orientation length %d, want %d", len(orient), od.NumPieces)
	}
	for _, o := range orient {
		if o < 0 || o >= od.NumOrientations {
			return fmt.Errorf("orientation %d outside [0,%d)", o, od.NumOrientations)
		}
	}

	return nil
}

// Fingerprint is the canonical encoding of a pattern. Equal fingerprints mean
// identical content at every position of every orbit.
type Fingerprint string

// Equal reports structural equality of two fingerprints.
func Equal(a, b Fingerprint) bool { return a == b }

// Digest returns a fixed-size blake3 digest of the fingerprint.
func (f Fingerprint) Digest() [32]byte { return blake3.Sum256([]byte(f)) }

// Hex returns the digest as lowercase hex, handy for logs and persisted records.
func (f Fingerprint) Hex() string {
	d := f.Digest()

	return hex.EncodeToString(d[:])
}
