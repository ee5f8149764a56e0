// Package hub provides the broadcast fan-out for pre-encoded wire messages.
//
// There is exactly one Hub per server process, created at startup. Producers
// call Publish with encoded bytes; every current subscriber receives every
// message published after it joined, in publish order. Publish never blocks:
// a subscriber whose buffer is full has its oldest pending message dropped,
// and the drop is reported to that subscriber as a lag count on its next
// receive instead of being silently swallowed.
//
// Late joiners are caught up through one of two bounded replay policies,
// chosen at construction:
//
//   - Snapshot: a provider function renders the single canonical
//     current-state message at subscribe time, atomically with registration,
//     so nothing published afterward is missed and nothing is replayed twice.
//   - History: a fixed-size FIFO ring of the most recently published
//     messages is copied to the new subscriber.
package hub
