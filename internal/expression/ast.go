package expression

import (
	"strconv"
	"strings"
)

// NodeType represents the type of an AST node.
type NodeType int

const (
	NodeTypeNumber           NodeType = iota // Numeric literal
	NodeTypeBinary                           // Infix operation
	NodeTypeUnary                            // Prefix operation
	NodeTypeFunction                         // Built-in function call
	NodeTypeConstant                         // Named constant
	NodeTypeVariable                         // Variable reference
	NodeTypeSymbolicFunction                 // Call only the symbolic collaborator understands
)

// String returns the string representation of the node type.
func (n NodeType) String() string {
	switch n {
	case NodeTypeNumber:
		return "Number"
	case NodeTypeBinary:
		return "Binary"
	case NodeTypeUnary:
		return "Unary"
	case NodeTypeFunction:
		return "Function"
	case NodeTypeConstant:
		return "Constant"
	case NodeTypeVariable:
		return "Variable"
	case NodeTypeSymbolicFunction:
		return "SymbolicFunction"
	default:
		return "Unknown"
	}
}

// Node represents a node in the AST. Nodes are immutable once built.
type Node interface {
	Type() NodeType
	Position() SourcePosition
	String() string
}

// NumberNode represents a numeric literal.
type NumberNode struct {
	Value float64
	Pos   SourcePosition
}

func (n *NumberNode) Type() NodeType           { return NodeTypeNumber }
func (n *NumberNode) Position() SourcePosition { return n.Pos }
func (n *NumberNode) String() string           { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// BinaryNode represents an infix operation.
type BinaryNode struct {
	Left     Node
	Operator BinaryOperator
	Right    Node
	Implicit bool // multiplication inferred from adjacency, no operator token
	Pos      SourcePosition
}

func (n *BinaryNode) Type() NodeType           { return NodeTypeBinary }
func (n *BinaryNode) Position() SourcePosition { return n.Pos }
func (n *BinaryNode) String() string {
	if n.Operator == OpEquals {
		return n.Left.String() + " = " + n.Right.String()
	}
	return "(" + n.Left.String() + " " + n.Operator.Symbol() + " " + n.Right.String() + ")"
}

// UnaryNode represents a prefix operation.
type UnaryNode struct {
	Operator UnaryOperator
	Operand  Node
	Pos      SourcePosition
}

func (n *UnaryNode) Type() NodeType           { return NodeTypeUnary }
func (n *UnaryNode) Position() SourcePosition { return n.Pos }
func (n *UnaryNode) String() string           { return "(" + n.Operator.Symbol() + n.Operand.String() + ")" }

// FunctionNode represents a call of a built-in function.
type FunctionNode struct {
	Function MathFunction
	Argument Node
	Pos      SourcePosition
}

func (n *FunctionNode) Type() NodeType           { return NodeTypeFunction }
func (n *FunctionNode) Position() SourcePosition { return n.Pos }
func (n *FunctionNode) String() string           { return n.Function.String() + "(" + n.Argument.String() + ")" }

// ConstantNode represents pi or e.
type ConstantNode struct {
	Constant MathConstant
	Pos      SourcePosition
}

func (n *ConstantNode) Type() NodeType           { return NodeTypeConstant }
func (n *ConstantNode) Position() SourcePosition { return n.Pos }
func (n *ConstantNode) String() string           { return n.Constant.String() }

// VariableNode represents a variable reference.
type VariableNode struct {
	Name string
	Pos  SourcePosition
}

func (n *VariableNode) Type() NodeType           { return NodeTypeVariable }
func (n *VariableNode) Position() SourcePosition { return n.Pos }
func (n *VariableNode) String() string           { return n.Name }

// SymbolicFunctionNode represents a call such as diff(x^2, x).
type SymbolicFunctionNode struct {
	Name      string
	Arguments []Node
	Pos       SourcePosition
}

func (n *SymbolicFunctionNode) Type() NodeType           { return NodeTypeSymbolicFunction }
func (n *SymbolicFunctionNode) Position() SourcePosition { return n.Pos }
func (n *SymbolicFunctionNode) String() string {
	args := make([]string, len(n.Arguments))
	for i, arg := range n.Arguments {
		args[i] = arg.String()
	}
	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

// Walk visits node and its descendants depth-first, parents before children.
func Walk(node Node, visit func(Node)) {
	if node == nil {
		return
	}
	visit(node)
	switch n := node.(type) {
	case *BinaryNode:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *UnaryNode:
		Walk(n.Operand, visit)
	case *FunctionNode:
		Walk(n.Argument, visit)
	case *SymbolicFunctionNode:
		for _, arg := range n.Arguments {
			Walk(arg, visit)
		}
	}
}

// NodeCount returns the number of nodes in the tree.
func NodeCount(node Node) int {
	count := 0
	Walk(node, func(Node) { count++ })
	return count
}

// Variables returns the distinct variable names in order of first appearance.
func Variables(node Node) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(node, func(n Node) {
		if v, ok := n.(*VariableNode); ok && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
	})
	return names
}

// IsEquation reports whether the root of the tree is an Equals node.
func IsEquation(node Node) bool {
	b, ok := node.(*BinaryNode)
	return ok && b.Operator == OpEquals
}
