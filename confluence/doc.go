// SPDX-License-Identifier: MIT

// Package confluence decides whether two move sequences reach the same puzzle
// state, optionally up to a final-layer adjustment applied before or after
// the first sequence.
//
// An adjustment set is an ordered list of labelled algorithms whose first
// element is always the identity. Rotations(face) builds the usual AUF set
// [identity, F, F2, F']; IdentityOnly() collapses the search to exact-state
// comparison.
//
// IsConfluent(a, b) computes target = state(b) and walks the cross product
// of (prefix, suffix) adjustments prefix-major, suffix-minor, returning the
// first pair for which state(prefix ⧺ a ⧺ suffix) equals target:
//
//	(id, id)   → Exact
//	otherwise  → Adjusted{Prefix, Suffix}
//	none       → NoMatch
//
// The walk order is fixed so ties resolve identically across runs.
package confluence
