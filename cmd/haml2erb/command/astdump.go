package command

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/go-haml/haml2erb/haml"
)

// dumpAST renders a HAML AST as an indented tree, for the --dump-ast
// debug flag.
func dumpAST(root *haml.Node) string {
	tree := treeprint.New()
	addNode(tree, root)
	return tree.String()
}

func addNode(tree treeprint.Tree, n *haml.Node) {
	label := nodeLabel(n)
	if len(n.Children) == 0 {
		tree.AddNode(label)
		return
	}
	branch := tree.AddBranch(label)
	for _, c := range n.Children {
		addNode(branch, c)
	}
}

func nodeLabel(n *haml.Node) string {
	switch n.Kind {
	case haml.KindTag:
		return fmt.Sprintf("tag %%%s (line %d)", n.Name, n.Line)
	case haml.KindScript:
		return fmt.Sprintf("script %q (line %d)", n.Text, n.Line)
	case haml.KindSilentScript:
		return fmt.Sprintf("silent_script %q (line %d)", n.Text, n.Line)
	case haml.KindFilter:
		return fmt.Sprintf("filter :%s (line %d)", n.FilterName, n.Line)
	case haml.KindDoctype:
		return fmt.Sprintf("doctype %s (line %d)", n.DoctypeType, n.Line)
	case haml.KindComment:
		return fmt.Sprintf("comment (line %d)", n.Line)
	case haml.KindPlain:
		return fmt.Sprintf("plain %q (line %d)", n.Text, n.Line)
	case haml.KindHamlComment:
		return fmt.Sprintf("haml_comment (line %d)", n.Line)
	default:
		return "root"
	}
}
