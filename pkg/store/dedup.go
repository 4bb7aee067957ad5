package store

import (
	"github.com/dolthub/maphash"
)

// dedupIndex is the hash-cons index: an open-addressing table whose keys are
// the 32-bit syntax fingerprints of the interned subtrees. Slots hold node
// ids; the fingerprint itself lives in the record, so a slot is one word.
//
// The fingerprints are deterministic, so a seeded hasher spreads them over
// the probe sequence to keep crafted or degenerate inputs from clustering.
// There is no deletion; growth rehashes every id.
type dedupIndex struct {
	slots  []NodeId
	mask   uint64
	len    int
	hasher maphash.Hasher[uint32]
}

const dedupInitialSize = 256

func (d *dedupIndex) init() {
	d.slots = make([]NodeId, dedupInitialSize)
	d.mask = dedupInitialSize - 1
	d.hasher = maphash.NewHasher[uint32]()
}

// probe looks up a fingerprint, confirming candidates with eq. It returns
// either the matching id, or the vacant slot the caller must commit the new
// id into. Growing happens up front so the returned slot stays valid while
// the caller builds the record; the split avoids a second lookup on insert.
func (d *dedupIndex) probe(syntax uint32, eq func(NodeId) bool, syntaxOf func(NodeId) uint32) (slot int, existing NodeId) {
	if d.len+1 > len(d.slots)*7/8 {
		d.grow(syntaxOf)
	}

	i := d.hasher.Hash(syntax) & d.mask
	for {
		id := d.slots[i]
		if !id.IsValid() {
			return int(i), 0
		}
		if eq(id) {
			return int(i), id
		}
		i = (i + 1) & d.mask
	}
}

// commit publishes id into a slot previously returned by probe.
func (d *dedupIndex) commit(slot int, id NodeId) {
	d.slots[slot] = id
	d.len++
}

func (d *dedupIndex) grow(syntaxOf func(NodeId) uint32) {
	old := d.slots
	d.slots = make([]NodeId, len(old)*2)
	d.mask = uint64(len(d.slots) - 1)
	for _, id := range old {
		if !id.IsValid() {
			continue
		}
		i := d.hasher.Hash(syntaxOf(id)) & d.mask
		for d.slots[i].IsValid() {
			i = (i + 1) & d.mask
		}
		d.slots[i] = id
	}
}
