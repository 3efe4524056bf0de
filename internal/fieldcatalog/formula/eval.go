package formula

import (
	"errors"
	"loanportal-server/internal/fieldcatalog/domain"
	"math"
	"strings"
	"time"
)

// Env supplies placeholder values. domain.Record satisfies it.
type Env interface {
	Get(name string) domain.Value
}

// Evaluate parses and evaluates source against env.
func Evaluate(source string, env Env) (domain.Value, error) {
	expr, err := Parse(source)
	if err != nil {
		return domain.Null(), err
	}
	return expr.Evaluate(env)
}

func (e *Expression) Evaluate(env Env) (domain.Value, error) {
	if env == nil {
		env = domain.Record(nil)
	}
	value, err := eval(e.Root, env)
	if err != nil {
		return domain.Null(), withSource(err, e.Source)
	}
	if n, ok := value.Number(); ok && (math.IsNaN(n) || math.IsInf(n, 0)) {
		return domain.Null(), withSource(evalErrorf(e.Root.Pos(), "result is not a finite number"), e.Source)
	}
	return value, nil
}

func eval(n Node, env Env) (domain.Value, error) {
	switch node := n.(type) {
	case *NumberLiteral:
		return domain.Number(node.Value), nil
	case *StringLiteral:
		return domain.String(node.Value), nil
	case *BoolLiteral:
		return domain.Bool(node.Value), nil
	case *FieldRef:
		return env.Get(node.Name), nil
	case *UnaryExpr:
		return evalUnary(node, env)
	case *BinaryExpr:
		return evalBinary(node, env)
	case *CallExpr:
		fn, ok := lookupFunction(node.Name)
		if !ok {
			return domain.Null(), evalErrorf(node.Offset, "unknown function %s", node.Name)
		}
		return fn.call(node, env)
	default:
		return domain.Null(), evalErrorf(n.Pos(), "unsupported expression")
	}
}

func evalUnary(node *UnaryExpr, env Env) (domain.Value, error) {
	operand, err := eval(node.Operand, env)
	if err != nil {
		return domain.Null(), err
	}
	n, err := toNumber(operand, node.Operand.Pos())
	if err != nil {
		return domain.Null(), err
	}
	if node.Op == TokenMinus {
		return domain.Number(-n), nil
	}
	return domain.Number(n), nil
}

func evalBinary(node *BinaryExpr, env Env) (domain.Value, error) {
	left, err := eval(node.Left, env)
	if err != nil {
		return domain.Null(), err
	}
	right, err := eval(node.Right, env)
	if err != nil {
		return domain.Null(), err
	}

	switch node.Op {
	case TokenAmp:
		return domain.String(left.String() + right.String()), nil
	case TokenPlus:
		return add(left, right, node.Offset)
	case TokenMinus:
		return subtract(left, right, node.Offset)
	case TokenStar, TokenSlash:
		l, err := toNumber(left, node.Left.Pos())
		if err != nil {
			return domain.Null(), err
		}
		r, err := toNumber(right, node.Right.Pos())
		if err != nil {
			return domain.Null(), err
		}
		if node.Op == TokenStar {
			return domain.Number(l * r), nil
		}
		if r == 0 {
			return domain.Null(), evalErrorf(node.Offset, "division by zero")
		}
		return domain.Number(l / r), nil
	default:
		return compare(node.Op, left, right), nil
	}
}

// add is numeric when both sides are numeric, shifts dates by whole days
// and concatenates text otherwise.
func add(left, right domain.Value, pos int) (domain.Value, error) {
	if t, ok := asDate(left); ok {
		if days, ok := numeric(right); ok {
			return domain.Date(t.AddDate(0, 0, int(days))), nil
		}
	}
	if t, ok := asDate(right); ok {
		if days, ok := numeric(left); ok {
			return domain.Date(t.AddDate(0, 0, int(days))), nil
		}
	}
	l, lok := numeric(left)
	r, rok := numeric(right)
	if lok && rok {
		return domain.Number(l + r), nil
	}
	if isText(left) || isText(right) {
		return domain.String(left.String() + right.String()), nil
	}
	return domain.Null(), evalErrorf(pos, "cannot add %s and %s", left.Kind(), right.Kind())
}

func subtract(left, right domain.Value, pos int) (domain.Value, error) {
	if lt, ok := asDate(left); ok {
		if rt, ok := asDate(right); ok {
			return domain.Number(math.Round(lt.Sub(rt).Hours() / 24)), nil
		}
		if days, ok := numeric(right); ok {
			return domain.Date(lt.AddDate(0, 0, -int(days))), nil
		}
	}
	l, err := toNumber(left, pos)
	if err != nil {
		return domain.Null(), err
	}
	r, err := toNumber(right, pos)
	if err != nil {
		return domain.Null(), err
	}
	return domain.Number(l - r), nil
}

func compare(op TokenType, left, right domain.Value) domain.Value {
	var cmp int
	l, lok := numeric(left)
	r, rok := numeric(right)
	lt, ltok := asDate(left)
	rt, rtok := asDate(right)

	switch {
	case lok && rok:
		cmp = compareFloat(l, r)
	case ltok && rtok:
		cmp = lt.Compare(rt)
	default:
		if lb, ok := left.Boolean(); ok {
			if rb, ok := right.Boolean(); ok {
				cmp = compareBool(lb, rb)
				break
			}
		}
		cmp = strings.Compare(left.String(), right.String())
	}

	switch op {
	case TokenEQ:
		return domain.Bool(cmp == 0)
	case TokenNEQ:
		return domain.Bool(cmp != 0)
	case TokenLT:
		return domain.Bool(cmp < 0)
	case TokenLTE:
		return domain.Bool(cmp <= 0)
	case TokenGT:
		return domain.Bool(cmp > 0)
	default:
		return domain.Bool(cmp >= 0)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// numeric treats null as zero, which is how a missing field reads inside
// arithmetic.
func numeric(v domain.Value) (float64, bool) {
	switch v.Kind() {
	case domain.KindNull:
		return 0, true
	case domain.KindBool:
		b, _ := v.Bool()
		if b {
			return 1, true
		}
		return 0, true
	case domain.KindString:
		s, _ := v.Str()
		if strings.TrimSpace(s) == "" {
			return 0, true
		}
		return v.Numeric()
	default:
		return v.Numeric()
	}
}

func toNumber(v domain.Value, pos int) (float64, error) {
	n, ok := numeric(v)
	if !ok {
		return 0, evalErrorf(pos, "%q is not a number", v.String())
	}
	return n, nil
}

func asDate(v domain.Value) (time.Time, bool) {
	if t, ok := v.Time(); ok {
		return t, true
	}
	if s, ok := v.Str(); ok {
		if _, isNumber := domain.ParseNumber(s); isNumber {
			return time.Time{}, false
		}
		return domain.ParseDate(s)
	}
	return time.Time{}, false
}

func isText(v domain.Value) bool {
	return v.Kind() == domain.KindString
}

func isFormulaError(err error) bool {
	var ferr *Error
	return errors.As(err, &ferr)
}
