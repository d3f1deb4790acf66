// Package query defines the filter expression tree: logical nodes combining
// comparisons of record fields against literal arguments. Trees are built
// with the fluent helpers in this package or parsed from RSQL text with Parse.
package query

import (
	"strings"

	"github.com/asaidimu/go-rsql/core/schema"
)

// Logical operators for combining filter nodes.
const (
	LogicalOperatorAnd = schema.LogicalAnd
	LogicalOperatorOr  = schema.LogicalOr
)

// ComparisonOperator defines the operator of a comparison node. Standard
// operators use their canonical RSQL spelling.
type ComparisonOperator string

// Supported comparison operators.
const (
	ComparisonOperatorEq  ComparisonOperator = "=="
	ComparisonOperatorNeq ComparisonOperator = "!="
	ComparisonOperatorGt  ComparisonOperator = "=gt="
	ComparisonOperatorLt  ComparisonOperator = "=lt="
	ComparisonOperatorGte ComparisonOperator = "=ge="
	ComparisonOperatorLte ComparisonOperator = "=le="
	ComparisonOperatorIn  ComparisonOperator = "=in="
	ComparisonOperatorNin ComparisonOperator = "=out="
)

// standardComparisonOperators maps every standard operator to whether it
// takes a list of arguments.
var standardComparisonOperators = map[ComparisonOperator]bool{
	ComparisonOperatorEq:  false,
	ComparisonOperatorNeq: false,
	ComparisonOperatorGt:  false,
	ComparisonOperatorLt:  false,
	ComparisonOperatorGte: false,
	ComparisonOperatorLte: false,
	ComparisonOperatorIn:  true,
	ComparisonOperatorNin: true,
}

// operatorAliases are the alternative symbols accepted for standard operators.
var operatorAliases = map[string]ComparisonOperator{
	">":  ComparisonOperatorGt,
	"<":  ComparisonOperatorLt,
	">=": ComparisonOperatorGte,
	"<=": ComparisonOperatorLte,
}

// LookupOperator returns the canonical operator for an RSQL symbol. Symbols
// that are not standard are returned unchanged so that custom operators can
// be registered under them.
func LookupOperator(symbol string) ComparisonOperator {
	if op, ok := operatorAliases[symbol]; ok {
		return op
	}
	return ComparisonOperator(symbol)
}

// IsStandard checks if a comparison operator is one of the standard, built-in operators.
func (c ComparisonOperator) IsStandard() bool {
	_, ok := standardComparisonOperators[c]
	return ok
}

// IsMultiValue reports whether the operator compares against a set of
// arguments rather than a single one.
func (c ComparisonOperator) IsMultiValue() bool {
	return standardComparisonOperators[c]
}

// GetStandardComparisonOperators returns all standard comparison operators.
func GetStandardComparisonOperators() []ComparisonOperator {
	return []ComparisonOperator{
		ComparisonOperatorEq,
		ComparisonOperatorNeq,
		ComparisonOperatorGt,
		ComparisonOperatorLt,
		ComparisonOperatorGte,
		ComparisonOperatorLte,
		ComparisonOperatorIn,
		ComparisonOperatorNin,
	}
}

// Node is a node of a filter expression tree. It is implemented only by
// *LogicalNode and *ComparisonNode.
type Node interface {
	filterNode() // restricts Node to the types defined here

	// String renders the node as RSQL.
	String() string
}

// LogicalNode combines its children with AND or OR.
type LogicalNode struct {
	Operator schema.LogicalOperator
	Children []Node
}

// ComparisonNode compares the value at a field path against its arguments.
// A nil Selector compares the record itself.
type ComparisonNode struct {
	Selector  *string
	Operator  ComparisonOperator
	Arguments []string
}

func (*LogicalNode) filterNode()    {}
func (*ComparisonNode) filterNode() {}

// SelectorString returns the field path, or "" for the record itself.
func (n *ComparisonNode) SelectorString() string {
	if n.Selector == nil {
		return ""
	}
	return *n.Selector
}

func (n *LogicalNode) String() string {
	sep := ";"
	if n.Operator == schema.LogicalOr {
		sep = ","
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		s := c.String()
		if _, ok := c.(*LogicalNode); ok {
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

func (n *ComparisonNode) String() string {
	var sb strings.Builder
	sb.WriteString(n.SelectorString())
	sb.WriteString(string(n.Operator))
	if len(n.Arguments) == 1 && !n.Operator.IsMultiValue() {
		sb.WriteString(quoteArgument(n.Arguments[0]))
		return sb.String()
	}
	sb.WriteByte('(')
	for i, a := range n.Arguments {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(quoteArgument(a))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n Node) int {
	switch n := n.(type) {
	case *LogicalNode:
		total := 1
		for _, c := range n.Children {
			total += Count(c)
		}
		return total
	case *ComparisonNode:
		return 1
	default:
		return 0
	}
}
