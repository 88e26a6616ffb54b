// Package tree implements the root-only binary-tree position service
// (spec §4.6), grounded on
// original_source/ex03/client/src/cluster/cluster_structure.py.
package tree

import (
	"fmt"
	"strings"
	"sync"
)

// Tree holds the level-order binary-tree array of node names. Index 0 is
// always the root. A monotonic nextIdx records the first unset slot.
//
// The original's find_absolute_parent_path pushes the parent's *integer
// index* for the first hop and node *names* for the rest, relying on index
// 0 later stringifying to the root's name by coincidence of list layout.
// This implementation pushes node names throughout and derives the
// leading "/" explicitly (SPEC_FULL.md §4 Open Question decision).
type Tree struct {
	mu       sync.Mutex
	slots    []string
	nextIdx  int
	rootName string
}

// New creates a Tree of the given capacity with rootName already
// occupying index 0.
func New(capacity int, rootName string) *Tree {
	slots := make([]string, capacity)
	slots[0] = rootName
	return &Tree{
		slots:    slots,
		nextIdx:  1,
		rootName: rootName,
	}
}

func parentIndex(i int) int {
	return (i - 1) / 2
}

// FindAbsoluteParentPath returns the absolute registry path of nodeName's
// parent, inserting nodeName into the tree at the next free slot if it is
// not already present. Calling this twice with the same name returns
// identical paths (spec §4.6 contract).
func (t *Tree) FindAbsoluteParentPath(nodeName string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexOf(nodeName)
	if idx == -1 {
		if t.nextIdx >= len(t.slots) {
			return "", fmt.Errorf("tree: no free slot for node %q (capacity %d exhausted)", nodeName, len(t.slots))
		}
		idx = t.nextIdx
		t.slots[idx] = nodeName
		t.nextIdx++
	}

	names := []string{}
	cur := parentIndex(idx)
	for {
		names = append(names, t.slots[cur])
		if cur == 0 {
			break
		}
		cur = parentIndex(cur)
	}

	// names was collected root-to-leaf in reverse; flip it.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	return "/" + strings.Join(names, "/"), nil
}

func (t *Tree) indexOf(nodeName string) int {
	for i := 0; i < t.nextIdx; i++ {
		if t.slots[i] == nodeName {
			return i
		}
	}
	return -1
}

// GetStructure returns a shallow copy of the tree array, including unset
// ("") slots.
func (t *Tree) GetStructure() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cp := make([]string, len(t.slots))
	copy(cp, t.slots)
	return cp
}
