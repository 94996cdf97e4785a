package tree

import (
	"strings"
)

type prettyNode interface {
	prettyLabel() string
	// prettyChildren returns untyped nil for the absent child.
	prettyChildren() (right, left prettyNode)
}

// prettyPrint renders one node per line, depth first, the right
// subtree above the left one.
//
//	4
//	├── 6
//	│   ├── 7
//	│   └── 5
//	└── 2
//	    └── 1
func prettyPrint(root prettyNode) string {
	var sb strings.Builder
	sb.WriteString(root.prettyLabel())
	sb.WriteByte('\n')
	prettyPrintChildren(&sb, root, "")
	return sb.String()
}

func prettyPrintChildren(sb *strings.Builder, node prettyNode, prefix string) {
	right, left := node.prettyChildren()
	if right != nil {
		pointer, padding := "└── ", "    "
		if left != nil {
			pointer, padding = "├── ", "│   "
		}
		sb.WriteString(prefix)
		sb.WriteString(pointer)
		sb.WriteString(right.prettyLabel())
		sb.WriteByte('\n')
		prettyPrintChildren(sb, right, prefix+padding)
	}
	if left != nil {
		sb.WriteString(prefix)
		sb.WriteString("└── ")
		sb.WriteString(left.prettyLabel())
		sb.WriteByte('\n')
		prettyPrintChildren(sb, left, prefix+"    ")
	}
}
