package decomp

// Position is a text position derived from the stored subtree metrics. It is
// relative to the start of the decompressed root's text.
type Position struct {
	// Offset is the byte offset of the node's first byte.
	Offset uint32
	// Line counts the line breaks before the node.
	Line uint32
}

// PositionOf computes the text position of index i by summing the byte
// lengths and line counts of everything to its left on the ancestor chain.
// Spacing nodes carry their exact text, so offsets are bit-exact without
// ever touching source text.
func (d *Complete) PositionOf(i int) Position {
	var pos Position
	for d.HasParent(i) {
		p := d.Parent(i)
		for _, c := range d.Children(p) {
			if c == i {
				break
			}
			ref := d.st.Resolve(d.idCompressed[c])
			pos.Offset += ref.BytesLen()
			pos.Line += uint32(ref.LineCount())
		}
		i = p
	}
	return pos
}

// RangeOf returns the byte range [start, end) covered by index i.
func (d *Complete) RangeOf(i int) (start, end uint32) {
	pos := d.PositionOf(i)
	return pos.Offset, pos.Offset + d.st.Resolve(d.idCompressed[i]).BytesLen()
}
