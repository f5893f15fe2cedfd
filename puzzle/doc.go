// SPDX-License-Identifier: MIT

// Package puzzle models puzzle states as orbit/permutation patterns and
// turns move sequences into comparable fingerprints.
//
// A Definition is a fixed tagged schema: named orbits (each with a piece
// count and an orientation count), named move transformations, and an
// optional default pattern. Applying a transformation T to a pattern S
// follows the usual orbit convention:
//
//	new.pieces[i]      = S.pieces[T.perm[i]]
//	new.orientation[i] = (S.orientation[T.perm[i]] + T.orientation[i]) mod n
//
// Definitions come from a Provider. Cube(n) generates NxN cubes from sticker
// geometry; LoadYAML reads one from a file. Lazy wraps any Provider with a
// one-time, idempotent initialization and an explicit Close.
//
// Simulator compiles the provided Definition on first use and exposes:
//
//   - Default        the solved pattern
//   - Apply          pattern × algorithm → pattern (ErrUnknownMove for foreign families)
//   - Fingerprint    algorithm → comparable Fingerprint of the reached state
//   - Validate       reports ErrUnknownMove without computing a state
//
// Two fingerprints are equal iff the algorithms have the same effect on every
// position; a Fingerprint is a plain string and can be used as a map key.
package puzzle
