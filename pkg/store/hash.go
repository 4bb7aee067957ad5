package store

import (
	"github.com/flier/astdiff/pkg/opt"
	"github.com/flier/astdiff/pkg/store/kinds"
)

// HashKind selects one of the three per-subtree fingerprints.
type HashKind uint8

const (
	// HashStructural depends only on the kinds of the subtree.
	HashStructural HashKind = iota
	// HashLabel adds labels on top of the structural fingerprint.
	HashLabel
	// HashSyntax combines label and structure, order sensitive over
	// children. It is the dedup key.
	HashSyntax
)

// The fingerprints are deterministic FNV-1a style u32 compositions so that
// they are stable across processes and can be persisted by embedders.
// Distinct seeds keep the three hash kinds in separate domains; distinct
// tags separate "no label" from "empty label".
const (
	fnvPrime uint32 = 16777619

	seedStructural uint32 = 2166136261
	seedLabel      uint32 = 0x8a91_37d1
	seedSyntax     uint32 = 0x5146_78e3

	tagNoLabel uint32 = 0xa5a5_a5a5
	tagLabel   uint32 = 0x5a5a_5a5a
)

func mix32(h, v uint32) uint32 {
	h ^= v
	h *= fnvPrime
	return h
}

// fingerprintString hashes label content bytes.
func fingerprintString(s string) uint32 {
	h := seedStructural
	for i := 0; i < len(s); i++ {
		h = mix32(h, uint32(s[i]))
	}
	return h
}

func (s *Store) hashStructural(kind kinds.Kind, children []NodeId) uint32 {
	h := mix32(seedStructural, uint32(kind))
	h = mix32(h, uint32(len(children)))
	for _, c := range children {
		h = mix32(h, s.nodes[c-1].structural)
	}
	return h
}

func (s *Store) hashLabel(kind kinds.Kind, label opt.Option[LabelId], children []NodeId) uint32 {
	h := mix32(seedLabel, uint32(kind))
	h = s.foldLabel(h, label)
	h = mix32(h, uint32(len(children)))
	for _, c := range children {
		h = mix32(h, s.nodes[c-1].labelFp)
	}
	return h
}

func (s *Store) hashSyntax(kind kinds.Kind, label opt.Option[LabelId], children []NodeId) uint32 {
	h := mix32(seedSyntax, uint32(kind))
	h = s.foldLabel(h, label)
	h = mix32(h, uint32(len(children)))
	for _, c := range children {
		h = mix32(h, s.nodes[c-1].syntax)
	}
	return h
}

func (s *Store) foldLabel(h uint32, label opt.Option[LabelId]) uint32 {
	if id, ok := label.Get(); ok {
		h = mix32(h, tagLabel)
		h = mix32(h, s.labels.hashes[id])
	} else {
		h = mix32(h, tagNoLabel)
	}
	return h
}
