// Package crs implements the concurrent reader set attached to every Mod: a
// small-buffer-optimized structure that holds zero, one, or many reader
// identities and supports lock-free concurrent insert and lazy-deleted
// remove, with iteration reserved for the (serialized) write path.
package crs

import (
	"encoding/binary"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// ReaderSet is the interface both the tree (Set) and linked-list (List)
// implementations satisfy. T is the reader identity type; callers key every
// operation with the 64-bit hash of that identity (see HashPointer).
type ReaderSet[T comparable] interface {
	// Insert adds value, keyed by key. Safe to call concurrently with other
	// Insert/Remove calls, never with ForAll.
	Insert(key uint64, value T)
	// Remove deletes value: lazily, by tombstone, except that Set clears a
	// value it holds as its single entry at once. Safe to call concurrently
	// with other Insert/Remove calls, never with ForAll.
	Remove(key uint64, value T)
	// ForAll applies f to every live reader, physically compacting away
	// tombstoned entries as it goes. Must not run concurrently with Insert
	// or Remove.
	ForAll(f func(T))
	// Empty reports whether the set has no live readers. Performs pending
	// lazy deletions, so it is subject to the same concurrency contract as
	// ForAll.
	Empty() bool
}

// HashPointer computes a 64-bit mixing hash of a pointer's identity, the key
// used to order entries in the tree implementation. Reader identities in
// this runtime are always pointers into the SP tree, so hashing pointer bits
// (rather than pointed-to contents) is what the reference design intends by
// "hash of the reader pointer".
func HashPointer[T any](p *T) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(uintptr(unsafe.Pointer(p))))
	return xxhash.Sum64(buf[:])
}
