// Package timeindex provides an ordered B+tree used to answer time range
// queries over decoded sensor tables.
package timeindex

import (
	"cmp"
	"sync"
)

// DefaultOrder is the fallback branching factor if a user-supplied order is too small.
const DefaultOrder = 32

// findChildIndex determines which child pointer to follow in an internal node.
func findChildIndex[K cmp.Ordered](keys []K, searchKey K) int {
	for i, k := range keys {
		if cmp.Compare(searchKey, k) < 0 {
			return i
		}
	}
	return len(keys)
}

// BPlusTree maps ordered keys to values. Leaves are linked left to right so
// range scans never revisit internal nodes.
type BPlusTree[K cmp.Ordered, V any] struct {
	root   *node[K, V]
	order  int
	height int
	size   int
	m      sync.RWMutex
}

// node represents both internal and leaf nodes in the B+Tree.
type node[K cmp.Ordered, V any] struct {
	isLeaf   bool
	keys     []K
	children []*node[K, V] // used if !isLeaf
	values   []V           // used if isLeaf
	parent   *node[K, V]
	next     *node[K, V] // leaf-link pointer, for range scans
}

// NewBPlusTree creates and returns a B+Tree with the given order.
// If the specified order < 3, we fall back to DefaultOrder.
func NewBPlusTree[K cmp.Ordered, V any](order int) *BPlusTree[K, V] {
	if order < 3 {
		order = DefaultOrder
	}
	return &BPlusTree[K, V]{
		root: &node[K, V]{
			isLeaf: true,
			keys:   make([]K, 0, order),
			values: make([]V, 0, order),
		},
		order:  order,
		height: 1,
	}
}

// Height returns the number of levels in the tree
func (tree *BPlusTree[K, V]) Height() int {
	tree.m.RLock()
	defer tree.m.RUnlock()
	return tree.height
}

// Len returns the number of distinct keys
func (tree *BPlusTree[K, V]) Len() int {
	tree.m.RLock()
	defer tree.m.RUnlock()
	return tree.size
}

func (tree *BPlusTree[K, V]) findLeaf(key K) *node[K, V] {
	current := tree.root
	for !current.isLeaf {
		current = current.children[findChildIndex(current.keys, key)]
	}
	return current
}

// Search locates the value associated with key.
func (tree *BPlusTree[K, V]) Search(key K) (V, bool) {
	tree.m.RLock()
	defer tree.m.RUnlock()

	leaf := tree.findLeaf(key)
	for i, k := range leaf.keys {
		if k == key {
			return leaf.values[i], true
		}
	}
	var zero V
	return zero, false
}

// Insert adds or replaces the value stored under key.
func (tree *BPlusTree[K, V]) Insert(key K, value V) {
	tree.Upsert(key, func(V, bool) V { return value })
}

// Upsert stores fn(old, found) under key in a single descent.
func (tree *BPlusTree[K, V]) Upsert(key K, fn func(old V, found bool) V) {
	tree.m.Lock()
	defer tree.m.Unlock()

	leaf := tree.findLeaf(key)
	idx := 0
	for idx < len(leaf.keys) && cmp.Compare(leaf.keys[idx], key) < 0 {
		idx++
	}
	if idx < len(leaf.keys) && leaf.keys[idx] == key {
		leaf.values[idx] = fn(leaf.values[idx], true)
		return
	}

	var zero V
	value := fn(zero, false)
	leaf.keys = append(leaf.keys, key)
	copy(leaf.keys[idx+1:], leaf.keys[idx:])
	leaf.keys[idx] = key

	leaf.values = append(leaf.values, value)
	copy(leaf.values[idx+1:], leaf.values[idx:])
	leaf.values[idx] = value
	tree.size++

	if len(leaf.keys) > tree.order {
		tree.splitLeaf(leaf)
	}
}

// Range calls fn for every key in [from, to) in ascending order until fn
// returns false.
func (tree *BPlusTree[K, V]) Range(from, to K, fn func(key K, value V) bool) {
	tree.m.RLock()
	defer tree.m.RUnlock()

	for leaf := tree.findLeaf(from); leaf != nil; leaf = leaf.next {
		for i, k := range leaf.keys {
			if cmp.Compare(k, from) < 0 {
				continue
			}
			if cmp.Compare(k, to) >= 0 {
				return
			}
			if !fn(k, leaf.values[i]) {
				return
			}
		}
	}
}

// splitLeaf handles splitting a leaf node that has overflowed.
func (tree *BPlusTree[K, V]) splitLeaf(leaf *node[K, V]) {
	mid := len(leaf.keys) / 2

	newLeaf := &node[K, V]{
		isLeaf: true,
		keys:   append([]K{}, leaf.keys[mid:]...),
		values: append([]V{}, leaf.values[mid:]...),
		next:   leaf.next,
		parent: leaf.parent,
	}

	leaf.keys = leaf.keys[:mid]
	leaf.values = leaf.values[:mid]
	leaf.next = newLeaf

	if leaf.parent == nil {
		newRoot := &node[K, V]{
			keys:     []K{newLeaf.keys[0]},
			children: []*node[K, V]{leaf, newLeaf},
		}
		leaf.parent = newRoot
		newLeaf.parent = newRoot
		tree.root = newRoot
		tree.height++
		return
	}

	tree.insertKeyInParent(leaf.parent, newLeaf.keys[0], newLeaf)
}

// insertKeyInParent inserts key and links rightChild after its left sibling.
func (tree *BPlusTree[K, V]) insertKeyInParent(parent *node[K, V], key K, rightChild *node[K, V]) {
	idx := 0
	for idx < len(parent.keys) && cmp.Compare(parent.keys[idx], key) < 0 {
		idx++
	}

	parent.keys = append(parent.keys, key)
	copy(parent.keys[idx+1:], parent.keys[idx:])
	parent.keys[idx] = key

	parent.children = append(parent.children, rightChild)
	copy(parent.children[idx+2:], parent.children[idx+1:])
	parent.children[idx+1] = rightChild

	rightChild.parent = parent

	if len(parent.keys) > tree.order {
		tree.splitInternalNode(parent)
	}
}

// splitInternalNode handles splitting an internal node that has overflowed.
func (tree *BPlusTree[K, V]) splitInternalNode(internal *node[K, V]) {
	mid := len(internal.keys) / 2
	splitKey := internal.keys[mid]

	newInternal := &node[K, V]{
		keys:     append([]K{}, internal.keys[mid+1:]...),
		children: append([]*node[K, V]{}, internal.children[mid+1:]...),
		parent:   internal.parent,
	}
	for _, child := range newInternal.children {
		child.parent = newInternal
	}

	internal.keys = internal.keys[:mid]
	internal.children = internal.children[:mid+1]

	if internal.parent == nil {
		newRoot := &node[K, V]{
			keys:     []K{splitKey},
			children: []*node[K, V]{internal, newInternal},
		}
		internal.parent = newRoot
		newInternal.parent = newRoot
		tree.root = newRoot
		tree.height++
		return
	}

	tree.insertKeyInParent(internal.parent, splitKey, newInternal)
}
