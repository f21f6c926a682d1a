package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arthur-debert/nanoquery/types"
)

// addCriteriaFlags adds the flags buildCriteria reads
func addCriteriaFlags(flags *pflag.FlagSet) {
	flags.String("criteria", "", "Criteria dictionary as inline JSON/YAML, or @file")
	flags.String("where", "", "Where clause as JSON/YAML")
	flags.String("sort", "", `Sort clause: {"attr": 1|-1} or "attr desc, other"`)
	flags.Int("skip", 0, "Skip the first n results")
	flags.Int("limit", 0, "Keep at most n results (0 means no limit)")
	flags.String("select", "", `Projection: "a,b", ["a"], {"*": true, "b": false}`)
}

// buildCriteria assembles criteria from --criteria, the individual clause
// flags (which override it) and the trailing filters carried in the
// command context (ANDed with any where clause).
func buildCriteria(cmd *cobra.Command) (types.Criteria, error) {
	var criteria types.Criteria
	flags := cmd.Flags()

	if src, _ := flags.GetString("criteria"); src != "" {
		data, err := readSource(src)
		if err != nil {
			return criteria, err
		}
		criteria, err = types.ParseCriteria(data)
		if err != nil {
			return criteria, NewValidationError("parse criteria", "criteria", src, CommonSuggestions.CheckCriteria)
		}
	}

	if flags.Changed("where") {
		src, _ := flags.GetString("where")
		v, err := types.ParseValue([]byte(src))
		if err != nil {
			return criteria, NewValidationError("parse criteria", "where clause", src, CommonSuggestions.CheckCriteria)
		}
		criteria.Where = v
	}

	if flags.Changed("sort") {
		src, _ := flags.GetString("sort")
		criteria.Sort = parseLoose(src)
	}

	if flags.Changed("skip") {
		criteria.Skip, _ = flags.GetInt("skip")
	}
	if flags.Changed("limit") {
		criteria.Limit, _ = flags.GetInt("limit")
	}

	if flags.Changed("select") {
		src, _ := flags.GetString("select")
		criteria.Select = parseSelect(src)
	}

	if q, ok := fromContext(cmd.Context()); ok && !q.IsEmpty() {
		criteria.Where = andWhere(criteria.Where, q.Where())
	}

	return criteria, nil
}

// andWhere combines two where clauses; an empty side is dropped
func andWhere(a, b types.Value) types.Value {
	if isEmptyWhere(a) {
		return b
	}
	if isEmptyWhere(b) {
		return a
	}
	return types.Object(types.RecordOf("and", types.List(a, b)))
}

func isEmptyWhere(v types.Value) bool {
	if v.IsNil() {
		return true
	}
	if s, ok := v.AsString(); ok {
		return s == ""
	}
	if r, ok := v.AsRecord(); ok {
		return r.Len() == 0
	}
	return false
}

// parseLoose decodes src as JSON/YAML, falling back to the raw string
func parseLoose(src string) types.Value {
	v, err := types.ParseValue([]byte(src))
	if err != nil || v.IsNil() {
		return types.String(src)
	}
	return v
}

// parseSelect reads a comma-separated attribute list as a list selection
func parseSelect(src string) types.Value {
	v := parseLoose(src)
	s, ok := v.AsString()
	if !ok || s == "*" {
		return v
	}
	parts := strings.Split(s, ",")
	attrs := make([]types.Value, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			attrs = append(attrs, types.String(p))
		}
	}
	return types.List(attrs...)
}

// readSource returns src itself, or the contents of the file it names
// when prefixed with "@"
func readSource(src string) ([]byte, error) {
	if !strings.HasPrefix(src, "@") {
		return []byte(src), nil
	}
	data, err := os.ReadFile(strings.TrimPrefix(src, "@"))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}
	return data, nil
}

// splitArgs separates positional arguments from the filters after "--"
func splitArgs(cmd *cobra.Command, args []string) (positional, filters []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

// exactPositional validates the number of arguments before "--"
func exactPositional(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		positional, _ := splitArgs(cmd, args)
		if len(positional) != n {
			return fmt.Errorf("accepts %d arg(s) before --, received %d", n, len(positional))
		}
		return nil
	}
}
