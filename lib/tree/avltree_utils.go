package tree

import (
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

func avlHeight[K infra.OrderedKey](node AVLNode[K]) int32 {
	if node == nil {
		return 0
	}
	return node.Height()
}

// postorder walks the children before the parent.
func avlPostorder[K infra.OrderedKey](node AVLNode[K], fn func(AVLNode[K]) error) error {
	if node == nil {
		return nil
	}
	if err := avlPostorder[K](node.Left(), fn); err != nil {
		return err
	}
	if err := avlPostorder[K](node.Right(), fn); err != nil {
		return err
	}
	return fn(node)
}

// HeightViolationValidate checks the cached height of every node is
// one plus the higher child.
func HeightViolationValidate[K infra.OrderedKey](tree AVLTree[K]) error {
	return avlPostorder[K](tree.Root(), func(node AVLNode[K]) error {
		if node.Height() != 1+max(avlHeight[K](node.Left()), avlHeight[K](node.Right())) {
			return ErrAVLHeightViolation
		}
		return nil
	})
}

func BalanceViolationValidate[K infra.OrderedKey](tree AVLTree[K]) error {
	return avlPostorder[K](tree.Root(), func(node AVLNode[K]) error {
		if bf := avlHeight[K](node.Left()) - avlHeight[K](node.Right()); bf > 1 || bf < -1 {
			return ErrAVLBalanceViolation
		}
		return nil
	})
}

// ValidateAVLTree runs all AVL checks and combines the failures.
func ValidateAVLTree[K infra.OrderedKey](tree AVLTree[K]) error {
	return multierr.Combine(
		OrderViolationValidate[K](tree),
		HeightViolationValidate[K](tree),
		BalanceViolationValidate[K](tree),
	)
}

// Validate dispatches to the policy's validator.
func Validate[K infra.OrderedKey](set OrderedSet[K]) error {
	switch tree := set.(type) {
	case AVLTree[K]:
		return ValidateAVLTree[K](tree)
	case RBTree[K]:
		return ValidateRBTree[K](tree)
	default:
	}
	return OrderViolationValidate[K](set)
}
