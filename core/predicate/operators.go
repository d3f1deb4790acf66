package predicate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/asaidimu/go-rsql/core/query"
	"github.com/asaidimu/go-rsql/core/schema"
)

// Test reports whether a resolved value satisfies a comparison whose
// arguments were bound at compile time.
type Test func(actual schema.Value) (bool, error)

// OperatorFunc binds the arguments of a comparison and returns the Test
// applied to every value the comparison's selector resolves to. It is called
// once per comparison when a filter is compiled.
type OperatorFunc func(args []string) (Test, error)

// StandardOperators returns the built-in operator library keyed by the
// canonical operator symbol.
func StandardOperators() map[query.ComparisonOperator]OperatorFunc {
	return map[query.ComparisonOperator]OperatorFunc{
		query.ComparisonOperatorEq:  single(equality),
		query.ComparisonOperatorNeq: single(inequality),
		query.ComparisonOperatorGt:  single(ordering(func(c int) bool { return c > 0 })),
		query.ComparisonOperatorLt:  single(ordering(func(c int) bool { return c < 0 })),
		query.ComparisonOperatorGte: single(ordering(func(c int) bool { return c >= 0 })),
		query.ComparisonOperatorLte: single(ordering(func(c int) bool { return c <= 0 })),
		query.ComparisonOperatorIn:  in,
		query.ComparisonOperatorNin: nin,
	}
}

// operand is a single argument parsed once at compile time.
type operand struct {
	raw     string
	num     schema.Number
	numeric bool
	truth   bool
}

func newOperand(arg string) operand {
	num, numeric := schema.ParseNumber(arg)
	return operand{
		raw:     arg,
		num:     num,
		numeric: numeric,
		truth:   strings.EqualFold(arg, "true"),
	}
}

// single adapts a one-argument comparison to an OperatorFunc.
func single(bind func(arg operand) Test) OperatorFunc {
	return func(args []string) (Test, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected a single argument, got %d", len(args))
		}
		return bind(newOperand(args[0])), nil
	}
}

func equality(arg operand) Test {
	pattern := globPattern(arg.raw)
	return func(actual schema.Value) (bool, error) {
		switch actual.Type() {
		case schema.FieldTypeArray, schema.FieldTypeSet:
			seq, _ := actual.Sequence()
			return anyElement(seq, func(v schema.Value) bool { return literalEqual(v, arg.raw) }), nil
		case schema.FieldTypeNumber:
			n, _ := actual.Number()
			return arg.numeric && n.Equal(arg.num), nil
		case schema.FieldTypeBoolean:
			b, _ := actual.Bool()
			return b == arg.truth, nil
		default:
			return matchGlob(actual, pattern), nil
		}
	}
}

// inequality negates equality, except that a null value is never unequal.
func inequality(arg operand) Test {
	pattern := globPattern(arg.raw)
	return func(actual schema.Value) (bool, error) {
		switch actual.Type() {
		case schema.FieldTypeArray, schema.FieldTypeSet:
			seq, _ := actual.Sequence()
			return !anyElement(seq, func(v schema.Value) bool { return literalEqual(v, arg.raw) }), nil
		case schema.FieldTypeNumber:
			n, _ := actual.Number()
			return arg.numeric && !n.Equal(arg.num), nil
		case schema.FieldTypeBoolean:
			b, _ := actual.Bool()
			return b != arg.truth, nil
		case schema.FieldTypeNull:
			return false, nil
		default:
			return !matchGlob(actual, pattern), nil
		}
	}
}

// ordering builds the four ordering comparisons. accept receives the result
// of comparing the actual value with the argument.
func ordering(accept func(c int) bool) func(arg operand) Test {
	return func(arg operand) Test {
		return func(actual schema.Value) (bool, error) {
			switch actual.Type() {
			case schema.FieldTypeNull:
				return false, nil
			case schema.FieldTypeNumber:
				if arg.numeric {
					n, _ := actual.Number()
					c, ok := n.Cmp(arg.num)
					return ok && accept(c), nil
				}
			case schema.FieldTypeString:
				s, _ := actual.Str()
				return accept(strings.Compare(s, arg.raw)), nil
			}
			return false, &Error{
				Err:     ErrIncompatibleTypes,
				Message: fmt.Sprintf("cannot compare %s %s with %q", actual.Type(), actual, arg.raw),
			}
		}
	}
}

func in(args []string) (Test, error) {
	set, err := argumentSet(args)
	if err != nil {
		return nil, err
	}
	return func(actual schema.Value) (bool, error) {
		if seq, ok := actual.Sequence(); ok {
			return anyElement(seq, set.contains), nil
		}
		return set.contains(actual), nil
	}, nil
}

func nin(args []string) (Test, error) {
	set, err := argumentSet(args)
	if err != nil {
		return nil, err
	}
	return func(actual schema.Value) (bool, error) {
		if seq, ok := actual.Sequence(); ok {
			return !anyElement(seq, set.contains), nil
		}
		return !set.contains(actual), nil
	}, nil
}

// stringSet holds the arguments of IN and NOT_IN.
type stringSet map[string]struct{}

func argumentSet(args []string) (stringSet, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected at least one argument")
	}
	set := make(stringSet, len(args))
	for _, a := range args {
		set[a] = struct{}{}
	}
	return set, nil
}

func (s stringSet) contains(v schema.Value) bool {
	text, ok := v.Text()
	if !ok {
		return false
	}
	_, ok = s[text]
	return ok
}

// literalEqual reports whether v is a string or enum spelled exactly arg.
func literalEqual(v schema.Value, arg string) bool {
	text, ok := v.Text()
	return ok && text == arg
}

func anyElement(seq schema.Sequence, fn func(schema.Value) bool) bool {
	for i := 0; i < seq.Len(); i++ {
		if fn(seq.Index(i)) {
			return true
		}
	}
	return false
}

// globPattern compiles a wildcard argument. A * matches any run of
// characters; everything else is literal. Matching ignores case and is not
// anchored.
func globPattern(arg string) *regexp.Regexp {
	parts := strings.Split(arg, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("(?i)" + strings.Join(parts, ".*"))
}

func matchGlob(v schema.Value, pattern *regexp.Regexp) bool {
	text, ok := v.Text()
	return ok && pattern.MatchString(text)
}
