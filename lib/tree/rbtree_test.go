package tree

import (
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)

	tree := NewRBTree[uint64]()
	require.True(t, tree.Root() == nil)
	require.True(t, tree.Find(1) == nil)
}

type rbCheckData struct {
	color RBColor
	key   int
}

func rbInorder(tree *rbTree[int]) []rbCheckData {
	res := make([]rbCheckData, 0, tree.Len())
	tree.foreachNode(func(_ int64, node *rbNode[int]) bool {
		res = append(res, rbCheckData{node.color, node.key})
		return true
	})
	return res
}

// rbn builds a detached node for the hand made trees.
func rbn(key int, color RBColor, left, right *rbNode[int]) *rbNode[int] {
	node := &rbNode[int]{key: key, color: color, left: left, right: right}
	node.fixLink()
	return node
}

// rbMirror negates the keys and swaps the children, the left side
// cases turn into the right side ones.
func rbMirror(node *rbNode[int]) *rbNode[int] {
	if node == nil {
		return nil
	}
	return rbn(-node.key, node.color, rbMirror(node.right), rbMirror(node.left))
}

func newHandMadeRBTree(t *testing.T, root *rbNode[int], opts ...TreeOption) *rbTree[int] {
	tree := NewRBTree[int](opts...).(*rbTree[int])
	tree.root = root
	count := int64(0)
	tree.foreachNode(func(int64, *rbNode[int]) bool {
		count++
		return true
	})
	tree.count = count
	require.NoError(t, ValidateRBTree[int](tree))
	return tree
}

func TestRBTreeRotate(t *testing.T) {
	tree := newHandMadeRBTree(t, rbn(10, Black,
		rbn(5, Black, nil, nil),
		rbn(20, Black, rbn(15, Red, nil, nil), rbn(25, Red, nil, nil)),
	))

	tree.leftRotate(tree.root)
	require.Equal(t, 20, tree.root.key)
	require.Nil(t, tree.root.parent)
	require.Equal(t, 10, tree.root.left.key)
	require.Equal(t, 15, tree.root.left.right.key)
	require.Equal(t, tree.root.left, tree.root.left.right.parent)
	require.NoError(t, ParentViolationValidate[int](tree))
	require.NoError(t, OrderViolationValidate[int](tree))

	tree.rightRotate(tree.root)
	require.Equal(t, 10, tree.root.key)
	require.Equal(t, 20, tree.root.right.key)
	require.Equal(t, 15, tree.root.right.left.key)
	require.NoError(t, ParentViolationValidate[int](tree))

	// Rotate a non-root node repoints the grandpa's child slot.
	tree.rightRotate(tree.root.right)
	require.Equal(t, 15, tree.root.right.key)
	require.Equal(t, tree.root, tree.root.right.parent)
	require.Equal(t, 20, tree.root.right.right.key)
	require.NoError(t, ParentViolationValidate[int](tree))
	require.NoError(t, OrderViolationValidate[int](tree))

	require.Panics(t, func() {
		tree.leftRotate(tree.root.left)
	})
	require.Panics(t, func() {
		tree.rightRotate(nil)
	})
	require.NoError(t, ParentViolationValidate[int](tree))
}

func TestRBTreeInsertRebalanceCases(t *testing.T) {
	testcases := []struct {
		name     string
		keys     []int
		cases    []string
		expected []rbCheckData
	}{
		{
			name:  "left case1 uncle red",
			keys:  []int{10, 5, 15, 1},
			cases: []string{"insert.case1/Left"},
			expected: []rbCheckData{
				{Red, 1}, {Black, 5}, {Black, 10}, {Black, 15},
			},
		},
		{
			name:  "left case2 zig-zag",
			keys:  []int{10, 5, 7},
			cases: []string{"insert.case2/Left", "insert.case3/Left"},
			expected: []rbCheckData{
				{Red, 5}, {Black, 7}, {Red, 10},
			},
		},
		{
			name:  "left case3 straight line",
			keys:  []int{10, 5, 1},
			cases: []string{"insert.case3/Left"},
			expected: []rbCheckData{
				{Red, 1}, {Black, 5}, {Red, 10},
			},
		},
		{
			name:  "right case1 uncle red",
			keys:  []int{10, 15, 5, 20},
			cases: []string{"insert.case1/Right"},
			expected: []rbCheckData{
				{Black, 5}, {Black, 10}, {Black, 15}, {Red, 20},
			},
		},
		{
			name:  "right case2 zig-zag",
			keys:  []int{10, 15, 12},
			cases: []string{"insert.case2/Right", "insert.case3/Right"},
			expected: []rbCheckData{
				{Red, 10}, {Black, 12}, {Red, 15},
			},
		},
		{
			name:  "right case3 straight line",
			keys:  []int{10, 15, 20},
			cases: []string{"insert.case3/Right"},
			expected: []rbCheckData{
				{Red, 10}, {Black, 15}, {Red, 20},
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			mp, reader := newTestMeterProvider(tt)
			tree := NewRBTree[int](WithTreeMeterProvider(mp)).(*rbTree[int])
			for _, key := range tc.keys {
				require.True(tt, tree.Insert(key))
				require.NoError(tt, ValidateRBTree[int](tree))
			}
			require.Equal(tt, tc.expected, rbInorder(tree))

			cases := collectRebalanceCases(tt, reader)
			require.Len(tt, cases, len(tc.cases))
			for _, c := range tc.cases {
				require.Equal(tt, int64(1), cases[c], c)
			}
		})
	}
}

func TestRBTreeRemoveRebalanceCases(t *testing.T) {
	testcases := []struct {
		name     string
		root     func() *rbNode[int]
		del      int
		cases    []string
		expected []rbCheckData
	}{
		{
			name: "case1 red sibling",
			root: func() *rbNode[int] {
				return rbn(10, Black,
					rbn(5, Black, nil, nil),
					rbn(20, Red, rbn(15, Black, nil, nil), rbn(25, Black, nil, nil)),
				)
			},
			del:   5,
			cases: []string{"delete.case1", "delete.case2"},
			expected: []rbCheckData{
				{Black, 10}, {Red, 15}, {Black, 20}, {Black, 25},
			},
		},
		{
			name: "case2 black nephews",
			root: func() *rbNode[int] {
				return rbn(10, Black, rbn(5, Black, nil, nil), rbn(15, Black, nil, nil))
			},
			del:   5,
			cases: []string{"delete.case2"},
			expected: []rbCheckData{
				{Black, 10}, {Red, 15},
			},
		},
		{
			name: "case3 near nephew red",
			root: func() *rbNode[int] {
				return rbn(10, Black,
					rbn(5, Black, nil, nil),
					rbn(15, Black, rbn(12, Red, nil, nil), nil),
				)
			},
			del:   5,
			cases: []string{"delete.case3", "delete.case4"},
			expected: []rbCheckData{
				{Black, 10}, {Black, 12}, {Black, 15},
			},
		},
		{
			name: "case4 far nephew red",
			root: func() *rbNode[int] {
				return rbn(10, Black,
					rbn(5, Black, nil, nil),
					rbn(15, Black, nil, rbn(20, Red, nil, nil)),
				)
			},
			del:   5,
			cases: []string{"delete.case4"},
			expected: []rbCheckData{
				{Black, 10}, {Black, 15}, {Black, 20},
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name+" left", func(tt *testing.T) {
			mp, reader := newTestMeterProvider(tt)
			tree := newHandMadeRBTree(tt, tc.root(), WithTreeMeterProvider(mp))
			require.True(tt, tree.Delete(tc.del))
			require.NoError(tt, ValidateRBTree[int](tree))
			require.Equal(tt, tc.expected, rbInorder(tree))

			cases := collectRebalanceCases(tt, reader)
			require.Len(tt, cases, len(tc.cases))
			for _, c := range tc.cases {
				require.Equal(tt, int64(1), cases[c+"/Left"], c)
			}
		})
		t.Run(tc.name+" right", func(tt *testing.T) {
			mp, reader := newTestMeterProvider(tt)
			tree := newHandMadeRBTree(tt, rbMirror(tc.root()), WithTreeMeterProvider(mp))
			require.True(tt, tree.Delete(-tc.del))
			require.NoError(tt, ValidateRBTree[int](tree))

			expected := make([]rbCheckData, 0, len(tc.expected))
			for i := len(tc.expected) - 1; i >= 0; i-- {
				expected = append(expected, rbCheckData{tc.expected[i].color, -tc.expected[i].key})
			}
			require.Equal(tt, expected, rbInorder(tree))

			cases := collectRebalanceCases(tt, reader)
			require.Len(tt, cases, len(tc.cases))
			for _, c := range tc.cases {
				require.Equal(tt, int64(1), cases[c+"/Right"], c)
			}
		})
	}
}

func TestRBTreeScenario(t *testing.T) {
	tree := NewRBTree[int]().(*rbTree[int])
	for _, key := range []int{10, 5, 1, 7, 6} {
		require.True(t, tree.Insert(key))
		require.NoError(t, ValidateRBTree[int](tree))
	}
	require.Equal(t, Black, tree.Root().Color())
	require.Equal(t, []int{1, 5, 6, 7, 10}, tree.InorderTraversal())
	require.Equal(t, []rbCheckData{
		{Black, 1}, {Black, 5}, {Red, 6}, {Black, 7}, {Red, 10},
	}, rbInorder(tree))
	require.Equal(t, 5, tree.Root().Key())
	require.Equal(t, 3, tree.Height())
	require.Equal(t, 2, tree.BlackHeight())

	require.True(t, tree.Delete(1))
	require.NoError(t, ValidateRBTree[int](tree))
	require.Equal(t, 7, tree.Root().Key())
	require.True(t, tree.Delete(5))
	require.NoError(t, ValidateRBTree[int](tree))
	require.Equal(t, []int{6, 7, 10}, tree.InorderTraversal())
	require.Equal(t, []rbCheckData{
		{Black, 6}, {Black, 7}, {Black, 10},
	}, rbInorder(tree))
	require.Equal(t, int64(3), tree.Len())
	require.Equal(t, int64(3), tree.CountLeaves())
}

func TestRBTreeRemoveTwoChildren(t *testing.T) {
	tree := NewRBTree[int]().(*rbTree[int])
	for i := 1; i <= 15; i++ {
		tree.Insert(i)
	}
	root := tree.Root().Key()
	succ := tree.root.right.minimum()
	require.True(t, tree.Delete(root))
	require.NoError(t, ValidateRBTree[int](tree))
	require.False(t, tree.Search(root))
	// The successor node itself is moved, its key is not copied.
	require.Same(t, succ, tree.find(succ.key))
	require.Nil(t, tree.root.parent)
}

func TestRBTreeNoop(t *testing.T) {
	tree := NewRBTree[int]()
	require.False(t, tree.Delete(1))
	require.True(t, tree.IsEmpty())

	require.True(t, tree.Insert(1))
	require.False(t, tree.Insert(1))
	require.Equal(t, int64(1), tree.Len())
	require.False(t, tree.Delete(2))
	require.Equal(t, []int{1}, tree.InorderTraversal())

	require.True(t, tree.Delete(1))
	require.True(t, tree.IsEmpty())
	require.Equal(t, 0, tree.Height())
	require.Equal(t, 0, tree.BlackHeight())
	_, ok := tree.Min()
	require.False(t, ok)
}

func TestRBTreeDesc(t *testing.T) {
	tree := NewRBTree[int](WithTreeDesc())
	for _, key := range []int{3, 9, 1, 7, 5} {
		tree.Insert(key)
	}
	require.NoError(t, ValidateRBTree[int](tree))
	require.Equal(t, []int{9, 7, 5, 3, 1}, tree.InorderTraversal())
	minKey, _ := tree.Min()
	maxKey, _ := tree.Max()
	require.Equal(t, 9, minKey)
	require.Equal(t, 1, maxKey)
}

func TestRBTreeAllAndForeach(t *testing.T) {
	tree := NewRBTree[string]()
	for _, key := range []string{"d", "b", "a", "c", "e"} {
		tree.Insert(key)
	}
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, slices.Collect(tree.All()))

	keys := make([]string, 0, 2)
	tree.Foreach(func(idx int64, key string) bool {
		keys = append(keys, key)
		return idx < 1
	})
	require.Equal(t, []string{"a", "b"}, keys)

	for key := range tree.All() {
		if key == "c" {
			break
		}
	}
}

func TestRBTreeRelease(t *testing.T) {
	mp, reader := newTestMeterProvider(t)
	tree := NewRBTree[int](WithTreeMeterProvider(mp))
	for i := 0; i < 100; i++ {
		tree.Insert(i)
	}
	require.Equal(t, map[string]int64{"RedBlack": 100},
		collectSum(t, reader, "xtree.nodes", "xtree.policy"))

	tree.Release()
	require.True(t, tree.IsEmpty())
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, map[string]int64{"RedBlack": 0},
		collectSum(t, reader, "xtree.nodes", "xtree.policy"))
}

func rbtreeRandomInsertAndRemoveRunCore(t *testing.T, total int, violationCheck bool) {
	tree := NewRBTree[int]()
	inserted := make(map[int]struct{}, total)
	elements := make([]int, 0, total)
	for len(elements) < total {
		num := randv2.IntN(total * 4)
		_, ok := inserted[num]
		require.Equal(t, !ok, tree.Insert(num))
		if !ok {
			inserted[num] = struct{}{}
			elements = append(elements, num)
		}
		if violationCheck {
			require.NoError(t, ValidateRBTree[int](tree))
		}
	}
	require.Equal(t, int64(total), tree.Len())
	require.Equal(t, int64(total), tree.CountLeaves())

	sorted := slices.Clone(elements)
	slices.Sort(sorted)
	require.Equal(t, sorted, tree.InorderTraversal())

	randv2.Shuffle(len(elements), func(i, j int) {
		elements[i], elements[j] = elements[j], elements[i]
	})
	for i, num := range elements {
		require.True(t, tree.Delete(num))
		require.False(t, tree.Search(num))
		if violationCheck || i%64 == 0 {
			require.NoError(t, ValidateRBTree[int](tree))
		}
	}
	require.True(t, tree.IsEmpty())
}

func TestRBTreeRandomInsertAndRemove(t *testing.T) {
	testcases := []struct {
		name           string
		total          int
		violationCheck bool
	}{
		{
			name:  "random 100000",
			total: 100000,
		},
		{
			name:           "violation check random 2000",
			total:          2000,
			violationCheck: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveRunCore(tt, tc.total, tc.violationCheck)
		})
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	b.StopTimer()
	tree := NewRBTree[int]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i])
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	tree := NewRBTree[int]()
	for i := 0; i < b.N; i++ {
		tree.Insert(i)
	}
}
