package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a single record value. The zero Value is null.
type Value struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
	t    time.Time
}

func Null() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

func String(s string) Value {
	return Value{kind: KindString, s: s}
}

func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) Number() (float64, bool) {
	return v.n, v.kind == KindNumber
}

func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindDate
}

// Numeric reports the value as a number when it is one or when it is a
// string holding a number. Booleans and dates are not numeric.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindString:
		return ParseNumber(v.s)
	default:
		return 0, false
	}
}

// Boolean reports the value as a boolean when it is one or when it is
// the string "true" or "false".
func (v Value) Boolean() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindString:
		switch strings.ToLower(strings.TrimSpace(v.s)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// Truthy follows spreadsheet rules: null, false, 0, "" and "false" are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		if b, ok := v.Boolean(); ok {
			return b
		}
		return v.s != ""
	case KindDate:
		return !v.t.IsZero()
	default:
		return false
	}
}

// String renders the value as text. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.n)
	case KindString:
		return v.s
	case KindDate:
		return v.t.Format(DateLayout)
	default:
		return ""
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindDate:
		return v.t.Equal(o.t)
	default:
		return true
	}
}

// Any converts the value back to a plain Go value for serialization.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindDate:
		return v.t.Format(DateLayout)
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}

// FromAny converts a decoded JSON or YAML value into a Value. Composite
// values are kept as their JSON text.
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return String(x.String())
		}
		return Number(f)
	case string:
		return String(x)
	case time.Time:
		return Date(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return String(fmt.Sprint(x))
		}
		return String(string(data))
	}
}

// ParseNumber accepts plain numbers as well as currency and percentage
// input such as "$1,250.50" or "7.5%".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ParseDate accepts ISO dates, RFC 3339 timestamps and US style dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "01/02/2006", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Record is the flat key-value view of an in-progress application or loan.
// Missing keys read as null.
type Record map[string]Value

func (r Record) Get(name string) Value {
	if r == nil {
		return Null()
	}
	return r[name]
}

func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

func (r Record) ToMap() map[string]any {
	result := make(map[string]any, len(r))
	for k, v := range r {
		result[k] = v.Any()
	}
	return result
}

func RecordFromMap(values map[string]any) Record {
	record := make(Record, len(values))
	for k, v := range values {
		record[k] = FromAny(v)
	}
	return record
}
