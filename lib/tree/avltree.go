package tree

import (
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

//go:generate stringer -type=AVLRotationCase -trimprefix=AVLRotation
type AVLRotationCase uint8

const (
	AVLRotationNone AVLRotationCase = iota
	AVLRotationLL
	AVLRotationRR
	AVLRotationLR
	AVLRotationRL
)

// side is the heavier subtree that triggers the rotation.
func (c AVLRotationCase) side() Direction {
	switch c {
	case AVLRotationLL, AVLRotationLR:
		return Left
	case AVLRotationRR, AVLRotationRL:
		return Right
	default:
	}
	return Root
}

type avlNode[K infra.OrderedKey] struct {
	left   *avlNode[K]
	right  *avlNode[K]
	key    K
	height int32
}

func (node *avlNode[K]) Key() K {
	return node.key
}

// Height of the absent subtree is 0 and of a leaf is 1.
func (node *avlNode[K]) Height() int32 {
	if node == nil {
		return 0
	}
	return node.height
}

func (node *avlNode[K]) Left() AVLNode[K] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *avlNode[K]) Right() AVLNode[K] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *avlNode[K]) balance() int32 {
	if node == nil {
		return 0
	}
	return node.left.Height() - node.right.Height()
}

func (node *avlNode[K]) updateHeight() {
	node.height = 1 + max(node.left.Height(), node.right.Height())
}

func (node *avlNode[K]) minimum() *avlNode[K] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *avlNode[K]) maximum() *avlNode[K] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

func (node *avlNode[K]) prettyLabel() string {
	return fmt.Sprintf("%v", node.key)
}

func (node *avlNode[K]) prettyChildren() (right, left prettyNode) {
	if node.right != nil {
		right = node.right
	}
	if node.left != nil {
		left = node.left
	}
	return right, left
}

// avlTree owns the root slot. Insert and delete hand a subtree to the
// recursive call and take back the possibly different subtree root.
type avlTree[K infra.OrderedKey] struct {
	treeCore[K]
	root *avlNode[K]
}

var (
	_ AVLTree[int]    = (*avlTree[int])(nil)
	_ OrderedSet[int] = (*avlTree[int])(nil)
)

func (tree *avlTree[K]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *avlTree[K]) IsEmpty() bool {
	return tree.root == nil
}

func (tree *avlTree[K]) Root() AVLNode[K] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *avlTree[K]) increase(delta int64) {
	atomic.AddInt64(&tree.count, delta)
	tree.stats.RecordNodeCount(delta)
}

/*
		 |                          |
		 X                          L
		/ \     rightRotate(X)     / \
	   L   R    =============>   Ll   X
	  / \                            / \
	Ll   Lr                        Lr   R
*/
func (tree *avlTree[K]) rightRotate(x *avlNode[K]) *avlNode[K] {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[avltree] right rotate node x is nil or x.left is nil")
	}

	l := x.left
	x.left, l.right = l.right, x
	x.updateHeight()
	l.updateHeight()
	tree.stats.RecordRotation(Right)
	return l
}

/*
		 |                          |
		 X                          R
		/ \     leftRotate(X)      / \
	   L   R    ============>     X   Rr
	      / \                    / \
	    Rl   Rr                 L   Rl
*/
func (tree *avlTree[K]) leftRotate(x *avlNode[K]) *avlNode[K] {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[avltree] left rotate node x is nil or x.right is nil")
	}

	r := x.right
	x.right, r.left = r.left, x
	x.updateHeight()
	r.updateHeight()
	tree.stats.RecordRotation(Left)
	return r
}

// rebalance applies the rotation case and returns the new subtree root.
func (tree *avlTree[K]) rebalance(node *avlNode[K], c AVLRotationCase) *avlNode[K] {
	switch c {
	case AVLRotationNone:
		return node
	case AVLRotationLL:
		node = tree.rightRotate(node)
	case AVLRotationRR:
		node = tree.leftRotate(node)
	case AVLRotationLR:
		node.left = tree.leftRotate(node.left)
		node = tree.rightRotate(node)
	case AVLRotationRL:
		node.right = tree.rightRotate(node.right)
		node = tree.leftRotate(node)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[avltree] unknown rotation case " + c.String())
	}
	tree.stats.RecordRebalanceCase(c.String(), c.side())
	return node
}

// insertCase compares the new key with the heavier child's key
// to tell the straight line case from the zig-zag case.
func (tree *avlTree[K]) insertCase(node *avlNode[K], key K) AVLRotationCase {
	switch bf := node.balance(); {
	case bf > 1:
		if tree.keyCompare(key, node.left.key) < 0 {
			return AVLRotationLL
		}
		return AVLRotationLR
	case bf < -1:
		if tree.keyCompare(key, node.right.key) > 0 {
			return AVLRotationRR
		}
		return AVLRotationRL
	default:
	}
	return AVLRotationNone
}

// deleteCase reads the heavier child's own balance, the deleted key
// says nothing about the shape of the other side.
func (tree *avlTree[K]) deleteCase(node *avlNode[K]) AVLRotationCase {
	switch bf := node.balance(); {
	case bf > 1:
		if node.left.balance() >= 0 {
			return AVLRotationLL
		}
		return AVLRotationLR
	case bf < -1:
		if node.right.balance() <= 0 {
			return AVLRotationRR
		}
		return AVLRotationRL
	default:
	}
	return AVLRotationNone
}

func (tree *avlTree[K]) insert(node *avlNode[K], key K) (*avlNode[K], bool) {
	if node == nil {
		return &avlNode[K]{key: key, height: 1}, true
	}

	var inserted bool
	switch res := tree.keyCompare(key, node.key); {
	case res == 0:
		return node, false
	case res < 0:
		node.left, inserted = tree.insert(node.left, key)
	default:
		node.right, inserted = tree.insert(node.right, key)
	}
	if !inserted {
		return node, false
	}

	node.updateHeight()
	return tree.rebalance(node, tree.insertCase(node, key)), true
}

func (tree *avlTree[K]) Insert(key K) bool {
	root, inserted := tree.insert(tree.root, key)
	if !inserted {
		tree.debug("[avltree] duplicate key, insert ignored", key)
		return false
	}
	tree.root = root
	tree.increase(1)
	return true
}

func (tree *avlTree[K]) delete(node *avlNode[K], key K) (*avlNode[K], bool) {
	if node == nil {
		return nil, false
	}

	var removed bool
	switch res := tree.keyCompare(key, node.key); {
	case res < 0:
		node.left, removed = tree.delete(node.left, key)
	case res > 0:
		node.right, removed = tree.delete(node.right, key)
	default:
		removed = true
		if node.left == nil || node.right == nil {
			child := node.left
			if child == nil {
				child = node.right
			}
			node.left, node.right = nil, nil
			return child, true
		}
		// Borrow the successor, the leftmost of the right subtree.
		succ := node.right.minimum()
		node.key = succ.key
		node.right, _ = tree.delete(node.right, succ.key)
	}
	if !removed {
		return node, false
	}

	node.updateHeight()
	return tree.rebalance(node, tree.deleteCase(node)), true
}

func (tree *avlTree[K]) Delete(key K) bool {
	root, removed := tree.delete(tree.root, key)
	if !removed {
		tree.debug("[avltree] absent key, delete ignored", key)
		return false
	}
	tree.root = root
	tree.increase(-1)
	return true
}

func (tree *avlTree[K]) find(key K) *avlNode[K] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *avlTree[K]) Find(key K) AVLNode[K] {
	if node := tree.find(key); node != nil {
		return node
	}
	return nil
}

func (tree *avlTree[K]) Search(key K) bool {
	return tree.find(key) != nil
}

func (tree *avlTree[K]) Min() (K, bool) {
	if node := tree.root.minimum(); node != nil {
		return node.key, true
	}
	var zero K
	return zero, false
}

func (tree *avlTree[K]) Max() (K, bool) {
	if node := tree.root.maximum(); node != nil {
		return node.key, true
	}
	var zero K
	return zero, false
}

func (tree *avlTree[K]) Height() int {
	return int(tree.root.Height())
}

func (tree *avlTree[K]) CountLeaves() int64 {
	count := int64(0)
	tree.foreachNode(func(int64, *avlNode[K]) bool {
		count++
		return true
	})
	return count
}

func (tree *avlTree[K]) foreachNode(action func(idx int64, node *avlNode[K]) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	stack := make([]*avlNode[K], 0, tree.root.Height())
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *avlTree[K]) Foreach(action func(idx int64, key K) bool) {
	tree.foreachNode(func(idx int64, node *avlNode[K]) bool {
		return action(idx, node.key)
	})
}

func (tree *avlTree[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		tree.foreachNode(func(_ int64, node *avlNode[K]) bool {
			return yield(node.key)
		})
	}
}

func (tree *avlTree[K]) InorderTraversal() []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(_ int64, key K) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (tree *avlTree[K]) PrettyPrint() string {
	if tree.root == nil {
		return ""
	}
	return prettyPrint(tree.root)
}

func (tree *avlTree[K]) Release() {
	aux := tree.root
	tree.root = nil
	if aux == nil {
		return
	}

	stack := []*avlNode[K]{aux}
	for len(stack) > 0 {
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.left, aux.right = nil, nil
		tree.increase(-1)
	}
}

func NewAVLTree[K infra.OrderedKey](opts ...TreeOption) AVLTree[K] {
	return &avlTree[K]{
		treeCore: newTreeCore[K](AVL, opts...),
	}
}
