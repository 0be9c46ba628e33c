// Package validity tracks which iterator snapshots are still trustworthy.
//
// A Tracker belongs to exactly one container. Every structural mutation bumps
// the generation counter and, for partial invalidation, records the lowest
// position the mutation may have disturbed. Iterators capture the generation
// when they are adopted and later ask the tracker whether their position
// survived every mutation since then.
//
// # Validity Rule
//
// A snapshot (g, p) is valid iff g equals the current generation, or no full
// invalidation happened after g and p < threshold for every event recorded
// after g. Validity is a conjunction over the event suffix, so repeated
// erasures at different depths compose without resurrecting stale iterators.
//
// # Cost
//
// Mutations are O(1) regardless of how many iterators are alive: there is no
// registry of iterators to notify. A check is O(k) in the number of events
// since the snapshot. Full invalidation truncates the log because earlier
// events can no longer change any answer.
package validity
