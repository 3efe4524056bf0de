package formula

import (
	"errors"
	"fmt"
)

var ErrFormula = errors.New("formula error")

type ErrorKind int

const (
	KindSyntax ErrorKind = iota
	KindEvaluation
)

func (k ErrorKind) String() string {
	if k == KindSyntax {
		return "syntax"
	}
	return "evaluation"
}

// Error is returned for any formula that fails to parse or evaluate.
type Error struct {
	Kind       ErrorKind
	Formula    string
	Message    string
	Pos        int
	Suggestion string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("formula %s error at position %d: %s", e.Kind, e.Pos+1, e.Message)
	if e.Suggestion != "" {
		msg += " (" + e.Suggestion + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return ErrFormula
}

func syntaxErrorf(pos int, format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func evalErrorf(pos int, format string, args ...any) *Error {
	return &Error{Kind: KindEvaluation, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr := make([]int, lb+1)
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev = curr
	}
	return prev[lb]
}

func suggestFrom(input string, candidates []string, maxDist int) string {
	best := ""
	bestDist := maxDist + 1
	for _, c := range candidates {
		if d := levenshtein(input, c); d < bestDist {
			bestDist = d
			best = c
		}
	}
	if bestDist <= maxDist {
		return fmt.Sprintf("did you mean %s?", best)
	}
	return ""
}
