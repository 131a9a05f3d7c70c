// Package metrics provides lock-free counters for authgate observability.
//
// Counters are stored in cache-line-padded slots and incremented atomically.
// The write path is allocation-free. This package owns metric storage and
// snapshot creation only; it performs no I/O and imports no sibling
// package.
package metrics
