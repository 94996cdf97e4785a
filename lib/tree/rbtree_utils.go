package tree

import (
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

func isBlack[K infra.OrderedKey](node RBNode[K]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K infra.OrderedKey](node RBNode[K]) bool {
	return node != nil && node.Color() == Red
}

func isRoot[K infra.OrderedKey](node RBNode[K]) bool {
	return node != nil && node.Parent() == nil
}

func blackDepthTo[K infra.OrderedKey](target, to RBNode[K]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if isBlack[K](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

func RootViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if !isBlack[K](root) || !isRoot[K](root) {
		return ErrRBRootViolation
	}
	return nil
}

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	size := tree.Len()
	var aux RBNode[K] = tree.Root()
	if size < 0 || aux == nil {
		return nil
	}

	stack := make([]RBNode[K], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; isRed[K](aux) {
			if isRed[K](aux.Parent()) || isRed[K](aux.Left()) || isRed[K](aux.Right()) {
				return ErrRBRedViolation
			}
		}

		stack = stack[:size-1]
		if aux.Right() != nil {
			for aux = aux.Right(); aux != nil; aux = aux.Left() {
				stack = append(stack, aux)
			}
		}
	}
	return nil
}

// ParentViolationValidate checks every child back-references
// exactly the node owning it.
func ParentViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	stack := []RBNode[K]{root}
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range []RBNode[K]{aux.Left(), aux.Right()} {
			if child == nil {
				continue
			}
			if child.Parent() != aux {
				return ErrRBParentViolation
			}
			stack = append(stack, child)
		}
	}
	return nil
}

// BFS traversal to load all nodes with at least one nil leaf.
func bfsLeaves[K infra.OrderedKey](tree RBTree[K]) []RBNode[K] {
	size := tree.Len()
	var aux RBNode[K] = tree.Root()
	if size < 0 || aux == nil {
		return nil
	}

	leaves := make([]RBNode[K], 0, size>>1+1)
	queue := make([]RBNode[K], 0, size>>1+1)
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	leaves := bfsLeaves[K](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K](leaves[0], nil)
	for i := 1; i < len(leaves); i++ {
		if blackDepthTo[K](leaves[i], nil) != blackDepth {
			return ErrRBBlackViolation
		}
	}
	return nil
}

// OrderViolationValidate expects the inorder keys to be strictly
// increasing by the tree's own comparator.
func OrderViolationValidate[K infra.OrderedKey](tree OrderedSet[K]) error {
	cmp := infra.AscKeyComparator[K]
	if c, ok := tree.(interface{ keyCompare(k1, k2 K) int64 }); ok {
		cmp = c.keyCompare
	}

	var (
		prev K
		err  error
	)
	tree.Foreach(func(idx int64, key K) bool {
		if idx > 0 && cmp(prev, key) >= 0 {
			err = ErrOrderViolation
			return false
		}
		prev = key
		return true
	})
	return err
}

// ValidateRBTree runs all red-black checks and combines the failures.
func ValidateRBTree[K infra.OrderedKey](tree RBTree[K]) error {
	return multierr.Combine(
		OrderViolationValidate[K](tree),
		RootViolationValidate[K](tree),
		ParentViolationValidate[K](tree),
		RedViolationValidate[K](tree),
		BlackViolationValidate[K](tree),
	)
}
