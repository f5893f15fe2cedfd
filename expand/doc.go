// SPDX-License-Identifier: MIT

// Package expand grows a graph.Graph level by level and keeps it free of
// unnoticed duplicate states.
//
// Every child goes through the same candidate lifecycle, run to completion
// before the next child starts:
//
//	Created → Linked → Simplified → Checked → Resolved
//
//   - Created: the node is inserted at the direction offset from its parent.
//   - Linked: a Normal edge from the parent carries the raw segment.
//   - Simplified: the accumulated algorithm becomes
//     Simplify(parent ⧺ segment, Cancel).
//   - Checked: the confluence oracle compares the node against every other
//     node in insertion order; the first match wins.
//   - Resolved: the configured policy is applied (see Resolution).
//
// Stages are reported through WithOnStage and WithOnResolved hooks as they
// complete. Nothing in the lifecycle waits on timers.
//
// Errors:
//
//   - An unparseable child or one using an unknown move is skipped, logged
//     and listed in Report.Skipped; siblings continue.
//   - A missing parent aborts only that branch.
//   - A simulator failure (definition load) aborts the whole run, because no
//     later comparison could be trusted.
//   - Overlapping runs on one Expander return ErrBusy.
package expand
