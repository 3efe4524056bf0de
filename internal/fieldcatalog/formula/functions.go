package formula

import (
	"fmt"
	"loanportal-server/internal/fieldcatalog/domain"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type function struct {
	minArgs int
	maxArgs int
	// lazy functions receive unevaluated arguments.
	lazy     bool
	eager    func(pos int, args []domain.Value) (domain.Value, error)
	lazyCall func(node *CallExpr, env Env) (domain.Value, error)
}

func (f function) arity() string {
	switch {
	case f.maxArgs < 0:
		return fmt.Sprintf("at least %d argument(s)", f.minArgs)
	case f.minArgs == f.maxArgs:
		return fmt.Sprintf("%d argument(s)", f.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", f.minArgs, f.maxArgs)
	}
}

func (f function) call(node *CallExpr, env Env) (domain.Value, error) {
	if f.lazy {
		return f.lazyCall(node, env)
	}
	args := make([]domain.Value, len(node.Args))
	for i, arg := range node.Args {
		v, err := eval(arg, env)
		if err != nil {
			return domain.Null(), err
		}
		args[i] = v
	}
	return f.eager(node.Offset, args)
}

var functions map[string]function

func init() {
	functions = map[string]function{
		"IF":      {minArgs: 2, maxArgs: 3, lazy: true, lazyCall: fnIf},
		"IFERROR": {minArgs: 2, maxArgs: 2, lazy: true, lazyCall: fnIfError},
		"TEXT":    {minArgs: 2, maxArgs: 2, eager: fnText},
		"MIN":     {minArgs: 1, maxArgs: -1, eager: fnMin},
		"MAX":     {minArgs: 1, maxArgs: -1, eager: fnMax},
		"ROUND":   {minArgs: 1, maxArgs: 2, eager: fnRound},
		"EOMONTH": {minArgs: 2, maxArgs: 2, eager: fnEOMonth},
	}
}

func lookupFunction(name string) (function, bool) {
	fn, ok := functions[strings.ToUpper(name)]
	return fn, ok
}

func functionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func fnIf(node *CallExpr, env Env) (domain.Value, error) {
	cond, err := eval(node.Args[0], env)
	if err != nil {
		return domain.Null(), err
	}
	if cond.Truthy() {
		return eval(node.Args[1], env)
	}
	if len(node.Args) == 3 {
		return eval(node.Args[2], env)
	}
	return domain.Bool(false), nil
}

func fnIfError(node *CallExpr, env Env) (domain.Value, error) {
	value, err := eval(node.Args[0], env)
	if err != nil {
		if isFormulaError(err) {
			return eval(node.Args[1], env)
		}
		return domain.Null(), err
	}
	return value, nil
}

func fnMin(pos int, args []domain.Value) (domain.Value, error) {
	return fold(pos, args, math.Min)
}

func fnMax(pos int, args []domain.Value) (domain.Value, error) {
	return fold(pos, args, math.Max)
}

func fold(pos int, args []domain.Value, pick func(a, b float64) float64) (domain.Value, error) {
	result, err := toNumber(args[0], pos)
	if err != nil {
		return domain.Null(), err
	}
	for _, arg := range args[1:] {
		n, err := toNumber(arg, pos)
		if err != nil {
			return domain.Null(), err
		}
		result = pick(result, n)
	}
	return domain.Number(result), nil
}

func fnRound(pos int, args []domain.Value) (domain.Value, error) {
	n, err := toNumber(args[0], pos)
	if err != nil {
		return domain.Null(), err
	}
	digits := 0.0
	if len(args) == 2 {
		if digits, err = toNumber(args[1], pos); err != nil {
			return domain.Null(), err
		}
	}
	return domain.Number(roundTo(n, int(digits))), nil
}

// roundTo rounds half away from zero.
func roundTo(n float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(n*scale) / scale
}

func fnEOMonth(pos int, args []domain.Value) (domain.Value, error) {
	start, ok := asDate(args[0])
	if !ok {
		return domain.Null(), evalErrorf(pos, "EOMONTH expects a date, got %q", args[0].String())
	}
	months, err := toNumber(args[1], pos)
	if err != nil {
		return domain.Null(), err
	}
	firstOfMonth := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := firstOfMonth.AddDate(0, int(months)+1, -1)
	return domain.Date(end), nil
}

func fnText(pos int, args []domain.Value) (domain.Value, error) {
	format, _ := args[1].Str()
	if format == "" {
		format = args[1].String()
	}
	if isDateFormat(format) {
		t, ok := asDate(args[0])
		if !ok {
			return domain.Null(), evalErrorf(pos, "TEXT date format needs a date, got %q", args[0].String())
		}
		return domain.String(formatDate(t, format)), nil
	}
	n, err := toNumber(args[0], pos)
	if err != nil {
		return domain.Null(), err
	}
	return domain.String(formatNumber(n, format)), nil
}

func isDateFormat(format string) bool {
	upper := strings.ToUpper(format)
	if strings.ContainsAny(upper, "0#") {
		return false
	}
	return strings.ContainsAny(upper, "YMD")
}

var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// formatDate matches tokens on format itself; upper-casing first would
// shift byte offsets for runes such as 'ı' whose upper case is shorter.
func formatDate(t time.Time, format string) string {
	var sb strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, dt := range dateTokens {
			if hasPrefixFold(format[i:], dt.token) {
				sb.WriteString(t.Format(dt.layout))
				i += len(dt.token)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(format[i])
			i++
		}
	}
	return sb.String()
}

// hasPrefixFold reports whether s starts with the ASCII token, ignoring case.
func hasPrefixFold(s, token string) bool {
	return len(s) >= len(token) && strings.EqualFold(s[:len(token)], token)
}

// formatNumber understands spreadsheet masks such as "$#,##0.00" and "0.0%".
func formatNumber(n float64, format string) string {
	start := strings.IndexAny(format, "0#,.")
	if start < 0 {
		return format + domain.FormatNumber(n)
	}
	end := strings.LastIndexAny(format, "0#,.") + 1
	prefix, mask, suffix := format[:start], format[start:end], format[end:]

	if strings.Contains(suffix, "%") || strings.Contains(prefix, "%") {
		n *= 100
	}

	decimals := 0
	if dot := strings.Index(mask, "."); dot >= 0 {
		decimals = len(mask) - dot - 1
	}

	negative := n < 0
	digits := strconv.FormatFloat(math.Abs(roundTo(n, decimals)), 'f', decimals, 64)
	intPart, fracPart, _ := strings.Cut(digits, ".")
	if strings.Contains(mask, ",") {
		intPart = groupThousands(intPart)
	}

	var sb strings.Builder
	if negative {
		sb.WriteByte('-')
	}
	sb.WriteString(prefix)
	sb.WriteString(intPart)
	if decimals > 0 {
		sb.WriteByte('.')
		sb.WriteString(fracPart)
	}
	sb.WriteString(suffix)
	return sb.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
