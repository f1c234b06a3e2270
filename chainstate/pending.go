package chainstate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/tolelom/ledgercore/crypto"
)

// pendingSnapshot is a deep copy of the write buffer at some point in time,
// restored by RevertToSnapshot.
type pendingSnapshot struct {
	dirty   map[string][]byte
	deleted map[string]bool
}

// PendingOverlay layers a mutable write buffer over a prior DB: reads fall
// through to the prior layer, writes stay local until Commit flushes them.
// A failed transaction or market round simply drops the overlay by never
// calling Commit — there is no partial-write path. Because PendingOverlay
// itself implements DB, overlays nest: the matching engine can layer its
// own overlay on top of a transaction's already-pending one.
type PendingOverlay struct {
	prior     DB
	dirty     map[string][]byte
	deleted   map[string]bool
	snapshots []pendingSnapshot
}

// NewOverlay layers a fresh PendingOverlay over prior.
func NewOverlay(prior DB) *PendingOverlay {
	return &PendingOverlay{
		prior:   prior,
		dirty:   make(map[string][]byte),
		deleted: make(map[string]bool),
	}
}

func (o *PendingOverlay) Get(key []byte) ([]byte, error) {
	k := string(key)
	if o.deleted[k] {
		return nil, ErrNotFound
	}
	if v, ok := o.dirty[k]; ok {
		return v, nil
	}
	return o.prior.Get(key)
}

func (o *PendingOverlay) Set(key, value []byte) error {
	k := string(key)
	delete(o.deleted, k)
	cp := make([]byte, len(value))
	copy(cp, value)
	o.dirty[k] = cp
	return nil
}

func (o *PendingOverlay) Delete(key []byte) error {
	k := string(key)
	delete(o.dirty, k)
	o.deleted[k] = true
	return nil
}

// NewIterator merges the prior layer's matching keys with this overlay's
// dirty/deleted buffer, so a caller iterating the order book always sees
// the effect of every trade made so far in this overlay — there is no
// stale snapshot read.
func (o *PendingOverlay) NewIterator(prefix []byte) Iterator {
	merged := make(map[string][]byte)
	prior := o.prior.NewIterator(prefix)
	for prior.Next() {
		k := make([]byte, len(prior.Key()))
		copy(k, prior.Key())
		v := make([]byte, len(prior.Value()))
		copy(v, prior.Value())
		merged[string(k)] = v
	}
	prior.Release()

	p := string(prefix)
	for k, v := range o.dirty {
		if len(k) >= len(p) && k[:len(p)] == p {
			merged[k] = v
		}
	}
	for k := range o.deleted {
		delete(merged, k)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]kv, len(keys))
	for i, k := range keys {
		pairs[i] = kv{k: []byte(k), v: merged[k]}
	}
	return &sliceIter{pairs: pairs, idx: -1}
}

func (o *PendingOverlay) NewBatch() Batch {
	panic("chainstate: NewBatch is not supported on a PendingOverlay; call Commit instead")
}

func (o *PendingOverlay) Close() error { return nil }

// Snapshot saves the current write buffer and returns a snapshot id.
func (o *PendingOverlay) Snapshot() int {
	snap := pendingSnapshot{
		dirty:   make(map[string][]byte, len(o.dirty)),
		deleted: make(map[string]bool, len(o.deleted)),
	}
	for k, v := range o.dirty {
		cp := make([]byte, len(v))
		copy(cp, v)
		snap.dirty[k] = cp
	}
	for k, v := range o.deleted {
		snap.deleted[k] = v
	}
	o.snapshots = append(o.snapshots, snap)
	return len(o.snapshots) - 1
}

// RevertToSnapshot restores the write buffer to a previously saved
// snapshot, discarding every write made since, without discarding the
// whole overlay. The transaction evaluator and the matching engine do not
// use it: on failure they drop their whole overlay.
func (o *PendingOverlay) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(o.snapshots) {
		return fmt.Errorf("chainstate: invalid snapshot id %d", id)
	}
	snap := o.snapshots[id]
	dirty := make(map[string][]byte, len(snap.dirty))
	for k, v := range snap.dirty {
		cp := make([]byte, len(v))
		copy(cp, v)
		dirty[k] = cp
	}
	deleted := make(map[string]bool, len(snap.deleted))
	for k, v := range snap.deleted {
		deleted[k] = v
	}
	o.dirty = dirty
	o.deleted = deleted
	o.snapshots = o.snapshots[:id]
	return nil
}

// Discard drops every write this overlay has accumulated. Equivalent to
// reverting to a snapshot taken before the overlay existed.
func (o *PendingOverlay) Discard() {
	o.dirty = make(map[string][]byte)
	o.deleted = make(map[string]bool)
	o.snapshots = nil
}

// Commit flushes the write buffer into the prior layer. If prior is
// itself a PendingOverlay this just merges dirty/deleted maps; if prior
// is a leaf DB this writes a batch.
func (o *PendingOverlay) Commit() error {
	if parent, ok := o.prior.(*PendingOverlay); ok {
		for k, v := range o.dirty {
			parent.dirty[k] = v
			delete(parent.deleted, k)
		}
		for k := range o.deleted {
			parent.deleted[k] = true
			delete(parent.dirty, k)
		}
		o.Discard()
		return nil
	}
	batch := o.prior.NewBatch()
	for k, v := range o.dirty {
		batch.Set([]byte(k), v)
	}
	for k := range o.deleted {
		batch.Delete([]byte(k))
	}
	if err := batch.Write(); err != nil {
		return err
	}
	o.Discard()
	return nil
}

// ComputeRoot hashes the sorted, fully-merged key-value view (prior layer
// plus this overlay's writes) without flushing anything — safe to call
// before a block is finalised.
func (o *PendingOverlay) ComputeRoot() string {
	it := o.NewIterator([]byte{})
	var buf bytes.Buffer
	var lenBuf [4]byte
	for it.Next() {
		k := it.Key()
		v := it.Value()
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(k)))
		buf.Write(lenBuf[:])
		buf.Write(k)
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
		buf.Write(lenBuf[:])
		buf.Write(v)
	}
	it.Release()
	return crypto.Hash(buf.Bytes())
}
