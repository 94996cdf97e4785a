package tree

import (
	"iter"

	"github.com/benz9527/xtree/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=Direction
type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

//go:generate stringer -type=Policy
type Policy uint8

const (
	AVL Policy = iota
	RedBlack
)

type AVLNode[K infra.OrderedKey] interface {
	Key() K
	Height() int32
	Left() AVLNode[K]
	Right() AVLNode[K]
}

type RBNode[K infra.OrderedKey] interface {
	Key() K
	Color() RBColor
	Left() RBNode[K]
	Right() RBNode[K]
	Parent() RBNode[K]
}

// OrderedSet is the facade shared by both balancing policies.
// It is not thread safe, the owner has to serialize the callers.
type OrderedSet[K infra.OrderedKey] interface {
	Policy() Policy
	Len() int64
	// Insert returns false if the key is present, the tree is unchanged.
	Insert(key K) bool
	// Delete returns false if the key is absent, the tree is unchanged.
	Delete(key K) bool
	Search(key K) bool
	IsEmpty() bool
	Height() int
	// CountLeaves counts all nodes by traversal, not only the leaves.
	CountLeaves() int64
	Min() (K, bool)
	Max() (K, bool)
	InorderTraversal() []K
	All() iter.Seq[K]
	Foreach(action func(idx int64, key K) bool)
	PrettyPrint() string
	Release()
}

type AVLTree[K infra.OrderedKey] interface {
	OrderedSet[K]
	Root() AVLNode[K]
	Find(key K) AVLNode[K]
}

type RBTree[K infra.OrderedKey] interface {
	OrderedSet[K]
	Root() RBNode[K]
	Find(key K) RBNode[K]
	BlackHeight() int
}
