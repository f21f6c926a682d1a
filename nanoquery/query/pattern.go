package query

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/nanoquery/types"
)

// escapedPercent is how a literal percent sign is written in a pattern
const escapedPercent = "%%%"

// compilePattern converts a LIKE-style pattern into an anchored,
// case-insensitive regexp. % matches any run of characters and %%% stands
// for a literal %. Everything else matches literally. The sugar operators
// wrap the operand in % after escapes are resolved.
func compilePattern(op opKind, operand string) (*regexp.Regexp, error) {
	body := patternBody(operand)
	switch op {
	case opStartsWith:
		body += ".*"
	case opEndsWith:
		body = ".*" + body
	case opContains:
		body = ".*" + body + ".*"
	}
	re, err := regexp.Compile("(?is)^" + body + "$")
	if err != nil {
		return nil, &types.Error{Code: types.CodeInvalidPattern, Message: operand, Err: err}
	}
	return re, nil
}

func patternBody(pattern string) string {
	parts := strings.Split(pattern, escapedPercent)
	for i, part := range parts {
		pieces := strings.Split(part, "%")
		for j, piece := range pieces {
			pieces[j] = regexp.QuoteMeta(piece)
		}
		parts[i] = strings.Join(pieces, ".*")
	}
	return strings.Join(parts, "%")
}

// likePattern renders the operand as a SQL LIKE pattern with \ as escape
func likePattern(op opKind, operand string) string {
	p := strings.ReplaceAll(operand, `\`, `\\`)
	p = strings.ReplaceAll(p, "_", `\_`)
	p = strings.ReplaceAll(p, escapedPercent, `\%`)
	switch op {
	case opStartsWith:
		return p + "%"
	case opEndsWith:
		return "%" + p
	case opContains:
		return "%" + p + "%"
	default:
		return p
	}
}

// patternSubject stringifies a record value for pattern matching. Only
// strings, numbers and booleans take part; anything else never matches.
func patternSubject(v types.Value) (string, bool) {
	switch v.Kind() {
	case types.KindString, types.KindNumber, types.KindBool:
		return v.String(), true
	default:
		return "", false
	}
}
