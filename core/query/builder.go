package query

import (
	"github.com/asaidimu/go-rsql/core/schema"
)

// FilterConditionBuilder is used to build a single comparison (e.g., field == value).
type FilterConditionBuilder struct {
	selector *string
}

// Where begins the construction of a comparison on a dotted field path.
func Where(field string) *FilterConditionBuilder {
	return &FilterConditionBuilder{selector: StringPtr(field)}
}

// Self begins the construction of a comparison against the record itself
// rather than one of its fields.
func Self() *FilterConditionBuilder {
	return &FilterConditionBuilder{}
}

// Eq adds an equality condition. Strings may contain * wildcards.
func (fcb *FilterConditionBuilder) Eq(value any) *ComparisonNode {
	return fcb.Custom(ComparisonOperatorEq, value)
}

// Neq adds a not-equal condition.
func (fcb *FilterConditionBuilder) Neq(value any) *ComparisonNode {
	return fcb.Custom(ComparisonOperatorNeq, value)
}

// Lt adds a less-than condition.
func (fcb *FilterConditionBuilder) Lt(value any) *ComparisonNode {
	return fcb.Custom(ComparisonOperatorLt, value)
}

// Lte adds a less-than-or-equal condition.
func (fcb *FilterConditionBuilder) Lte(value any) *ComparisonNode {
	return fcb.Custom(ComparisonOperatorLte, value)
}

// Gt adds a greater-than condition.
func (fcb *FilterConditionBuilder) Gt(value any) *ComparisonNode {
	return fcb.Custom(ComparisonOperatorGt, value)
}

// Gte adds a greater-than-or-equal condition.
func (fcb *FilterConditionBuilder) Gte(value any) *ComparisonNode {
	return fcb.Custom(ComparisonOperatorGte, value)
}

// In adds an "in" condition, checking if a field's value is within a set of values.
func (fcb *FilterConditionBuilder) In(values ...any) *ComparisonNode {
	return fcb.Custom(ComparisonOperatorIn, values...)
}

// Nin adds a "not in" condition, checking if a field's value is not within a set of values.
func (fcb *FilterConditionBuilder) Nin(values ...any) *ComparisonNode {
	return fcb.Custom(ComparisonOperatorNin, values...)
}

// Custom allows for the use of a custom comparison operator.
func (fcb *FilterConditionBuilder) Custom(operator ComparisonOperator, values ...any) *ComparisonNode {
	args := make([]string, len(values))
	for i, v := range values {
		args[i] = FormatArgument(v)
	}
	var selector *string
	if fcb.selector != nil {
		selector = StringPtr(*fcb.selector)
	}
	return &ComparisonNode{
		Selector:  selector,
		Operator:  operator,
		Arguments: args,
	}
}

// And combines nodes so that all of them must match.
func And(children ...Node) *LogicalNode {
	return group(schema.LogicalAnd, children)
}

// Or combines nodes so that at least one of them must match.
func Or(children ...Node) *LogicalNode {
	return group(schema.LogicalOr, children)
}

func group(op schema.LogicalOperator, children []Node) *LogicalNode {
	return &LogicalNode{
		Operator: op,
		Children: append([]Node(nil), children...),
	}
}
