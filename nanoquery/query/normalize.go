package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/arthur-debert/nanoquery/types"
	"golang.org/x/text/cases"
)

// operand is one side of a loose comparison after normalization
type operand struct {
	num     float64
	str     string
	numeric bool
}

// normalizePair applies the loose comparison policy used by every where
// operator:
//   - undefined and null become the empty string
//   - when both sides read as finite numbers (numeric strings included) they
//     compare as numbers
//   - otherwise both sides compare as case-folded strings
func normalizePair(a, b types.Value) (operand, operand) {
	an, aok := numericValue(a)
	bn, bok := numericValue(b)
	if aok && bok {
		return operand{num: an, numeric: true}, operand{num: bn, numeric: true}
	}
	// A Caser keeps state, so each comparison gets its own.
	folder := cases.Fold()
	return operand{str: folder.String(a.String())}, operand{str: folder.String(b.String())}
}

// compareLoose returns -1, 0 or 1 under the normalization policy
func compareLoose(a, b types.Value) int {
	x, y := normalizePair(a, b)
	if x.numeric {
		switch {
		case x.num < y.num:
			return -1
		case x.num > y.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(x.str, y.str)
}

// numericValue reports whether v is a finite number or a string holding one
func numericValue(v types.Value) (float64, bool) {
	switch v.Kind() {
	case types.KindNumber:
		n, _ := v.AsNumber()
		return n, isFinite(n)
	case types.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, isFinite(n)
	default:
		return 0, false
	}
}

func isFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}
