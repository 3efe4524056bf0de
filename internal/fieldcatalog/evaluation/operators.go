package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"strings"
)

var ErrUnknownOperator = errors.New("unknown operator")

// Match applies a conditional operator to the current value of a field.
// A missing field must be passed as domain.Null().
func Match(op domain.Operator, fieldValue, conditionValue domain.Value) (bool, error) {
	switch op {
	case domain.OperatorEquals:
		return equals(fieldValue, conditionValue), nil
	case domain.OperatorNotEquals:
		return !equals(fieldValue, conditionValue), nil
	case domain.OperatorContains:
		return strings.Contains(containsText(fieldValue), containsText(conditionValue)), nil
	case domain.OperatorGreaterThan:
		l, r, ok := numericPair(fieldValue, conditionValue)
		return ok && l > r, nil
	case domain.OperatorLessThan:
		l, r, ok := numericPair(fieldValue, conditionValue)
		return ok && l < r, nil
	case domain.OperatorIn:
		for _, candidate := range splitList(conditionValue) {
			if equals(fieldValue, candidate) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w %q", ErrUnknownOperator, op)
	}
}

// containsText is the text contains compares. Null reads as "null", so a
// missing field still contains "null" and "nul".
func containsText(v domain.Value) string {
	if v.IsNull() {
		return "null"
	}
	return v.String()
}

// equals is type-aware: "true"/"false" strings compare as booleans and
// numeric strings compare numerically against numbers.
func equals(a, b domain.Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}

	if a.Kind() == domain.KindBool || b.Kind() == domain.KindBool {
		ab, aok := a.Boolean()
		bb, bok := b.Boolean()
		return aok && bok && ab == bb
	}

	if a.Kind() == domain.KindNumber || b.Kind() == domain.KindNumber {
		an, aok := a.Numeric()
		bn, bok := b.Numeric()
		return aok && bok && an == bn
	}

	if a.Kind() == domain.KindDate || b.Kind() == domain.KindDate {
		at, aok := asDate(a)
		bt, bok := asDate(b)
		return aok && bok && at.Equal(bt)
	}

	return a.String() == b.String()
}

func numericPair(a, b domain.Value) (float64, float64, bool) {
	l, lok := a.Numeric()
	r, rok := b.Numeric()
	return l, r, lok && rok
}

// splitList reads the operand of "in": a comma separated string, or a JSON
// array when the condition was stored as one.
func splitList(v domain.Value) []domain.Value {
	raw := v.String()
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			values := make([]domain.Value, 0, len(items))
			for _, item := range items {
				values = append(values, domain.FromAny(item))
			}
			return values
		}
	}

	parts := strings.Split(raw, ",")
	values := make([]domain.Value, 0, len(parts))
	for _, part := range parts {
		values = append(values, domain.String(strings.TrimSpace(part)))
	}
	return values
}
