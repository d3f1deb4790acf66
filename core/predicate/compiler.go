// Package predicate compiles filter trees into predicates over in-memory
// records. Field paths are resolved with the schema package, so a predicate
// can be evaluated against structs, maps, Documents or any schema.Record.
package predicate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/asaidimu/go-rsql/core/query"
	"github.com/asaidimu/go-rsql/core/schema"
	"go.uber.org/zap"
)

// Predicate reports whether a record matches a compiled filter. It holds no
// mutable state and may be called concurrently.
type Predicate func(record any) (bool, error)

// Match calls p and treats an evaluation error as a mismatch.
func (p Predicate) Match(record any) bool {
	ok, err := p(record)
	return err == nil && ok
}

// evaluator is a compiled node applied to a converted record.
type evaluator func(record schema.Value) (bool, error)

// Compiler turns filter trees into predicates using a registry of operators.
type Compiler struct {
	operators map[query.ComparisonOperator]OperatorFunc
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewCompiler creates a Compiler with the standard operators registered.
func NewCompiler(logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{
		operators: StandardOperators(),
		logger:    logger,
	}
}

// RegisterOperator registers a custom comparison operator, replacing any
// existing operator with the same symbol.
func (c *Compiler) RegisterOperator(operator query.ComparisonOperator, fn OperatorFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operators[operator] = fn
	c.logger.Info("Registered operator", zap.String("operator", string(operator)))
}

// RegisterOperators registers multiple operators from a map.
func (c *Compiler) RegisterOperators(operators map[query.ComparisonOperator]OperatorFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for operator, fn := range operators {
		c.operators[operator] = fn
		c.logger.Info("Registered operator", zap.String("operator", string(operator)))
	}
}

// Operators returns the symbols of every registered operator, sorted.
func (c *Compiler) Operators() []query.ComparisonOperator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ops := make([]query.ComparisonOperator, 0, len(c.operators))
	for op := range c.operators {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// Compile compiles a filter tree. A nil tree matches every record.
// Compilation fails with ErrUnsupportedOperator if a comparison uses an
// operator that is not registered.
func (c *Compiler) Compile(node query.Node) (Predicate, error) {
	if node == nil {
		return func(any) (bool, error) { return true, nil }, nil
	}

	c.mu.RLock()
	eval, err := c.compile(node)
	c.mu.RUnlock()
	if err != nil {
		c.logger.Debug("Failed to compile filter", zap.Stringer("filter", node), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("Compiled filter", zap.Stringer("filter", node), zap.Int("nodes", query.Count(node)))

	return func(record any) (bool, error) {
		return eval(schema.ValueOf(record))
	}, nil
}

// compile must be called with c.mu held for reading.
func (c *Compiler) compile(node query.Node) (evaluator, error) {
	switch n := flatten(node).(type) {
	case *query.LogicalNode:
		return c.compileLogical(n)
	case *query.ComparisonNode:
		return c.compileComparison(n)
	default:
		return nil, fmt.Errorf("unsupported filter node %T", n)
	}
}

// flatten skips logical nodes with a single child.
func flatten(node query.Node) query.Node {
	for {
		l, ok := node.(*query.LogicalNode)
		if !ok || len(l.Children) != 1 {
			return node
		}
		node = l.Children[0]
	}
}

func (c *Compiler) compileLogical(n *query.LogicalNode) (evaluator, error) {
	children := make([]evaluator, len(n.Children))
	for i, child := range n.Children {
		eval, err := c.compile(child)
		if err != nil {
			return nil, err
		}
		children[i] = eval
	}

	switch n.Operator {
	case schema.LogicalAnd:
		return func(record schema.Value) (bool, error) {
			for _, eval := range children {
				ok, err := eval(record)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		}, nil
	case schema.LogicalOr:
		return func(record schema.Value) (bool, error) {
			for _, eval := range children {
				ok, err := eval(record)
				if err != nil {
					return false, err
				}
				if ok {
					return true, nil
				}
			}
			return false, nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported logical operator: %s", n.Operator)
	}
}

func (c *Compiler) compileComparison(n *query.ComparisonNode) (evaluator, error) {
	fn, ok := c.operators[n.Operator]
	if !ok {
		return nil, &Error{Err: ErrUnsupportedOperator, Operator: n.Operator, Selector: n.SelectorString()}
	}
	test, err := fn(n.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", n, err)
	}

	if n.Selector == nil {
		return func(record schema.Value) (bool, error) {
			ok, err := test(record)
			if err != nil {
				return false, annotate(err, n)
			}
			return ok, nil
		}, nil
	}

	path := strings.Split(*n.Selector, ".")
	return func(record schema.Value) (bool, error) {
		ok, err := resolve(record, path, test)
		if err != nil {
			return false, annotate(err, n)
		}
		return ok, nil
	}, nil
}

// annotate attaches the comparison to an evaluation error.
func annotate(err error, n *query.ComparisonNode) error {
	var e *Error
	if errors.As(err, &e) && e.Operator == "" {
		return &Error{Err: e.Err, Operator: n.Operator, Selector: n.SelectorString(), Message: e.Message}
	}
	return fmt.Errorf("%s: %w", n, err)
}

var std = NewCompiler(nil)

// Compile compiles a filter tree with the standard operators.
func Compile(node query.Node) (Predicate, error) {
	return std.Compile(node)
}
