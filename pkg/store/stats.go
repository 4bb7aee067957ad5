package store

// Stats is a snapshot of the store's instrumentation counters.
type Stats struct {
	// Nodes is the number of interned node records.
	Nodes int
	// Labels is the number of interned labels.
	Labels int
	// DedupHits counts inserts resolved to an existing record.
	DedupHits uint64
	// ChildSlabLen and NoSpaceSlabLen are the spilled child list sizes, in
	// ids. Records with arity <= 2 never touch the slabs.
	ChildSlabLen   int
	NoSpaceSlabLen int
}

// Stats returns the current counters. Like every read it needs no
// synchronisation against other readers, only against a concurrent writer.
func (s *Store) Stats() Stats {
	return Stats{
		Nodes:          len(s.nodes),
		Labels:         len(s.labels.names),
		DedupHits:      s.dedupHits,
		ChildSlabLen:   len(s.childSlab),
		NoSpaceSlabLen: len(s.noSpaceSlab),
	}
}
