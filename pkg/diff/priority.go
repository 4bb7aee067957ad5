package diff

// priorityList is the height-indexed worklist of the subtree phase. Bucket
// idx holds the pending subtree indices of height maxHeight-idx; opening a
// subtree replaces it by its children in their own buckets. Subtrees below
// minHeight are dropped on sight.
type priorityList struct {
	view  View
	trees [][]int

	maxHeight  int
	minHeight  int
	currentIdx int
}

func newPriorityList(view View, minHeight int) *priorityList {
	root := view.Root()
	h := subtreeHeight(view, root)

	listSize := 0
	if h >= minHeight {
		listSize = h + 1 - minHeight
	}

	l := &priorityList{
		view:       view,
		trees:      make([][]int, listSize),
		maxHeight:  h,
		minHeight:  minHeight,
		currentIdx: -1,
	}
	if listSize > 0 {
		l.currentIdx = 0
	}
	l.addTree(root, h)
	return l
}

func subtreeHeight(view View, i int) int {
	return int(view.Store().Resolve(view.Original(i)).Height())
}

func (l *priorityList) idx(height int) int { return l.maxHeight - height }

func (l *priorityList) height(idx int) int { return l.maxHeight - idx }

func (l *priorityList) addTree(tree, h int) {
	if h >= l.minHeight {
		idx := l.idx(h)
		l.trees[idx] = append(l.trees[idx], tree)
	}
}

// open replaces the current-height bucket by the children of its entries.
func (l *priorityList) open() []int {
	pop := l.pop()
	if pop == nil {
		return nil
	}
	for _, tree := range pop {
		l.openTree(tree)
	}
	l.updateHeight()
	return pop
}

// pop takes the current-height bucket.
func (l *priorityList) pop() []int {
	if l.currentIdx < 0 {
		return nil
	}
	trees := l.trees[l.currentIdx]
	l.trees[l.currentIdx] = nil
	return trees
}

// openTree pushes the children of tree into their height buckets.
func (l *priorityList) openTree(tree int) {
	for _, c := range l.view.Children(tree) {
		l.addTree(c, subtreeHeight(l.view, c))
	}
}

// peekHeight returns the tallest pending height, or -1 when drained.
func (l *priorityList) peekHeight() int {
	if l.currentIdx == -1 {
		return -1
	}
	return l.height(l.currentIdx)
}

func (l *priorityList) updateHeight() {
	l.currentIdx = -1
	for i := range l.trees {
		if l.trees[i] != nil {
			l.currentIdx = i
			break
		}
	}
}
