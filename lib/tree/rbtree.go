package tree

import (
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

type rbNode[K infra.OrderedKey] struct {
	parent *rbNode[K] // back-reference only, never the owner
	left   *rbNode[K]
	right  *rbNode[K]
	key    K
	color  RBColor
}

func (node *rbNode[K]) Color() RBColor {
	return node.color
}

func (node *rbNode[K]) Key() K {
	return node.key
}

func (node *rbNode[K]) Left() RBNode[K] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K]) Parent() RBNode[K] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[K]) Right() RBNode[K] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// Nil leaves are black.
func (node *rbNode[K]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K]) Direction() Direction {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K]) grandpa() *rbNode[K] {
	return node.parent.parent
}

func (node *rbNode[K]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K]) minimum() *rbNode[K] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K]) maximum() *rbNode[K] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

func (node *rbNode[K]) prettyLabel() string {
	if node.color == Red {
		return fmt.Sprintf("%v R", node.key)
	}
	return fmt.Sprintf("%v B", node.key)
}

func (node *rbNode[K]) prettyChildren() (right, left prettyNode) {
	if node.right != nil {
		right = node.right
	}
	if node.left != nil {
		left = node.left
	}
	return right, left
}

type rbTree[K infra.OrderedKey] struct {
	treeCore[K]
	root *rbNode[K]
}

var (
	_ RBTree[int]     = (*rbTree[int])(nil)
	_ OrderedSet[int] = (*rbTree[int])(nil)
)

func (tree *rbTree[K]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K]) IsEmpty() bool {
	return tree.root == nil
}

func (tree *rbTree[K]) Root() RBNode[K] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *rbTree[K]) increase(delta int64) {
	atomic.AddInt64(&tree.count, delta)
	tree.stats.RecordNodeCount(delta)
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K]) leftRotate(x *rbNode[K]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
	tree.stats.RecordRotation(Left)
}

/*
			 |                         |
			 X                         L
			/ \     rightRotate(X)    / \
	       L   S    ============>    Ld  X
		  / \                           / \
		Ld   Lc                        Lc  S
*/
func (tree *rbTree[K]) rightRotate(x *rbNode[K]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p
	tree.stats.RecordRotation(Right)
}

func (tree *rbTree[K]) Insert(key K) bool {
	var (
		x, y *rbNode[K] = tree.root, nil
		res  int64
	)
	for x != nil {
		y = x
		res = tree.keyCompare(key, x.key)
		if /* equal */ res == 0 {
			tree.debug("[rbtree] duplicate key, insert ignored", key)
			return false
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	z := &rbNode[K]{
		key:    key,
		color:  Red,
		parent: y,
	}
	if /* empty */ y == nil {
		tree.root = z
	} else if res < 0 {
		y.left = z
	} else {
		y.right = z
	}

	tree.increase(1)
	tree.insertRebalance(z)
	return true
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

case1: Both the parent P and the uncle U are red, grandpa G is black.
Repaint P and U into black and G into red, then fix G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

case2: The uncle U is black and X is the inner grandchild.
Rotate P to the opposite direction, then fall into case3.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

case3: The uncle U is black and X is the outer grandchild.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K]) insertRebalance(x *rbNode[K]) {
	for x.parent.isRed() && x.grandpa() != nil {
		p, g := x.parent, x.grandpa()
		side := p.Direction()
		var u *rbNode[K]
		if side == Left {
			u = g.right
		} else {
			u = g.left
		}

		if /* case1 */ u.isRed() {
			tree.stats.RecordRebalanceCase(rbInsertCase1, side)
			p.color, u.color, g.color = Black, Black, Red
			x = g
			continue
		}

		if /* case2 */ x.Direction() != side {
			tree.stats.RecordRebalanceCase(rbInsertCase2, side)
			if side == Left {
				tree.leftRotate(p)
			} else {
				tree.rightRotate(p)
			}
			x, p = p, x
		}

		// case3
		tree.stats.RecordRebalanceCase(rbInsertCase3, side)
		p.color, g.color = Black, Red
		if side == Left {
			tree.rightRotate(g)
		} else {
			tree.leftRotate(g)
		}
		break
	}
	tree.root.color = Black
}

// transplant replaces the subtree rooted at u with the subtree rooted at v.
func (tree *rbTree[K]) transplant(u, v *rbNode[K]) {
	switch u.Direction() {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

// removeNode detaches z. A two children z is replaced by its successor
// node, the leftmost of z.right, so the links are moved instead of keys.
func (tree *rbTree[K]) removeNode(z *rbNode[K]) {
	var (
		x, xp  *rbNode[K]
		yColor = z.color
	)
	switch {
	case z.left == nil:
		x, xp = z.right, z.parent
		tree.transplant(z, z.right)
	case z.right == nil:
		x, xp = z.left, z.parent
		tree.transplant(z, z.left)
	default:
		y := z.right.minimum()
		yColor = y.color
		x = y.right
		if y.parent == z {
			xp = y
		} else {
			xp = y.parent
			tree.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		tree.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	z.parent, z.left, z.right = nil, nil, nil
	tree.increase(-1)
	if yColor == Black {
		tree.removeRebalance(x, xp)
	}
}

func (tree *rbTree[K]) Delete(key K) bool {
	z := tree.find(key)
	if z == nil {
		tree.debug("[rbtree] absent key, delete ignored", key)
		return false
	}
	tree.removeNode(z)
	return true
}

/*
X is the double black node, it may be nil. P is its real parent.
S is the sibling, C is the close (near) nephew, D is the distant nephew.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

case1: S is red. Rotate P toward X, then S is black and goes on.

	    [P]                   <S>               [S]
	    / \    l-rotate(P)    / \    repaint    / \
	  [X] <S>  ==========>  [P] [D]  ======>  <P> [D]
	      / \               / \               / \
	    [C] [D]           [X] [C]           [X] [C]

case2: S, C and D are black. Repaint S into red and move up to P.

	    {P}               {P}
	    / \               / \
	  [X] [S]  ====>    [X] <S>
	      / \               / \
	    [C] [D]           [C] [D]

case3: C is red and D is black. Rotate S away from X, then fall into case4.

	    {P}                {P}
	    / \                / \
	  [X] [S]  ======>   [X] [C]
	      / \                  \
	    <C> [D]                <S>
	                             \
	                             [D]

case4: D is red. Rotate P toward X, the double black is absorbed.

	    {P}                   {S}
	    / \    l-rotate(P)    / \
	  [X] [S]  ==========>  [P] [D]
	      / \               / \
	    {C} <D>           [X] {C}
*/
func (tree *rbTree[K]) removeRebalance(x, p *rbNode[K]) {
	for x != tree.root && x.isBlack() {
		if p == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] double black node without parent")
		}

		if x == p.left {
			s := p.right
			if s == nil {
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove rebalance left double black without sibling")
			}
			if /* case1 */ s.isRed() {
				tree.stats.RecordRebalanceCase(rbDeleteCase1, Left)
				s.color, p.color = Black, Red
				tree.leftRotate(p)
				s = p.right
			}
			if /* case2 */ s.left.isBlack() && s.right.isBlack() {
				tree.stats.RecordRebalanceCase(rbDeleteCase2, Left)
				s.color = Red
				x, p = p, p.parent
				continue
			}
			if /* case3 */ s.right.isBlack() {
				tree.stats.RecordRebalanceCase(rbDeleteCase3, Left)
				s.left.color, s.color = Black, Red
				tree.rightRotate(s)
				s = p.right
			}
			// case4
			tree.stats.RecordRebalanceCase(rbDeleteCase4, Left)
			s.color, p.color, s.right.color = p.color, Black, Black
			tree.leftRotate(p)
			x = tree.root
			break
		}

		s := p.left
		if s == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove rebalance right double black without sibling")
		}
		if /* case1 */ s.isRed() {
			tree.stats.RecordRebalanceCase(rbDeleteCase1, Right)
			s.color, p.color = Black, Red
			tree.rightRotate(p)
			s = p.left
		}
		if /* case2 */ s.left.isBlack() && s.right.isBlack() {
			tree.stats.RecordRebalanceCase(rbDeleteCase2, Right)
			s.color = Red
			x, p = p, p.parent
			continue
		}
		if /* case3 */ s.left.isBlack() {
			tree.stats.RecordRebalanceCase(rbDeleteCase3, Right)
			s.right.color, s.color = Black, Red
			tree.leftRotate(s)
			s = p.left
		}
		// case4
		tree.stats.RecordRebalanceCase(rbDeleteCase4, Right)
		s.color, p.color, s.left.color = p.color, Black, Black
		tree.rightRotate(p)
		x = tree.root
		break
	}
	if x != nil {
		x.color = Black
	}
}

func (tree *rbTree[K]) find(key K) *rbNode[K] {
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

func (tree *rbTree[K]) Find(key K) RBNode[K] {
	if node := tree.find(key); node != nil {
		return node
	}
	return nil
}

func (tree *rbTree[K]) Search(key K) bool {
	return tree.find(key) != nil
}

func (tree *rbTree[K]) Min() (K, bool) {
	if node := tree.root.minimum(); node != nil {
		return node.key, true
	}
	var zero K
	return zero, false
}

func (tree *rbTree[K]) Max() (K, bool) {
	if node := tree.root.maximum(); node != nil {
		return node.key, true
	}
	var zero K
	return zero, false
}

// Height is the count of nodes on the longest root to leaf path.
func (tree *rbTree[K]) Height() int {
	if tree.root == nil {
		return 0
	}
	height := 0
	level := []*rbNode[K]{tree.root}
	for len(level) > 0 {
		height++
		next := make([]*rbNode[K], 0, len(level)<<1)
		for _, node := range level {
			if node.left != nil {
				next = append(next, node.left)
			}
			if node.right != nil {
				next = append(next, node.right)
			}
		}
		level = next
	}
	return height
}

// BlackHeight counts the black nodes from the root (inclusive) to
// any nil leaf. Any path is fine if the tree is valid.
func (tree *rbTree[K]) BlackHeight() int {
	height := 0
	for aux := tree.root; aux != nil; aux = aux.left {
		if aux.isBlack() {
			height++
		}
	}
	return height
}

func (tree *rbTree[K]) CountLeaves() int64 {
	count := int64(0)
	tree.foreachNode(func(int64, *rbNode[K]) bool {
		count++
		return true
	})
	return count
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K]) foreachNode(action func(idx int64, node *rbNode[K]) bool) {
	size := atomic.LoadInt64(&tree.count)
	aux := tree.root
	if size < 0 || aux == nil {
		return
	}

	stack := make([]*rbNode[K], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux) {
			return
		}
		idx++
		stack = stack[:size-1]
		if aux.right != nil {
			for aux = aux.right; aux != nil; aux = aux.left {
				stack = append(stack, aux)
			}
		}
	}
}

func (tree *rbTree[K]) Foreach(action func(idx int64, key K) bool) {
	tree.foreachNode(func(idx int64, node *rbNode[K]) bool {
		return action(idx, node.key)
	})
}

func (tree *rbTree[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		tree.foreachNode(func(_ int64, node *rbNode[K]) bool {
			return yield(node.key)
		})
	}
}

func (tree *rbTree[K]) InorderTraversal() []K {
	keys := make([]K, 0, tree.Len())
	tree.Foreach(func(_ int64, key K) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (tree *rbTree[K]) PrettyPrint() string {
	if tree.root == nil {
		return ""
	}
	return prettyPrint(tree.root)
}

func (tree *rbTree[K]) Release() {
	size := atomic.LoadInt64(&tree.count)
	aux := tree.root
	tree.root = nil
	if size < 0 || aux == nil {
		return
	}

	stack := make([]*rbNode[K], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		aux = stack[size-1]
		r := aux.right
		aux.left, aux.right, aux.parent = nil, nil, nil
		tree.increase(-1)
		stack = stack[:size-1]
		if r != nil {
			for aux = r; aux != nil; aux = aux.left {
				stack = append(stack, aux)
			}
		}
	}
}

func NewRBTree[K infra.OrderedKey](opts ...TreeOption) RBTree[K] {
	return &rbTree[K]{
		treeCore: newTreeCore[K](RedBlack, opts...),
	}
}
