package validation

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/nanoquery/types"
)

// ValidateSortClause checks the shape of a sort clause before evaluation.
// Arrays and empty strings are rejected; so is anything that is neither a
// dictionary nor a string.
func ValidateSortClause(sort types.Value) error {
	switch sort.Kind() {
	case types.KindUndefined, types.KindNull, types.KindRecord:
		return nil
	case types.KindList:
		return types.Errorf(types.CodeSortClauseUnparseable, "sort clause cannot be an array")
	case types.KindString:
		if s, _ := sort.AsString(); strings.TrimSpace(s) == "" {
			return types.Errorf(types.CodeSortClauseUnparseable, "sort clause cannot be an empty string")
		}
		return nil
	default:
		return types.Errorf(types.CodeSortClauseUnparseable,
			"sort clause must be an object or a string, got %s", sort.Kind())
	}
}

// ValidateWhereClause checks the shape of a where clause: a dictionary (or
// nothing), whose and/or keys hold lists of dictionaries and whose not key
// holds a single dictionary. Operators are left to compilation.
func ValidateWhereClause(where types.Value) error {
	switch where.Kind() {
	case types.KindUndefined, types.KindNull:
		return nil
	case types.KindString:
		if s, _ := where.AsString(); s == "" {
			return nil
		}
	case types.KindRecord:
		rec, _ := where.AsRecord()
		return validateWhereRecord(rec)
	}
	return types.Errorf(types.CodeWhereClauseUnparseable,
		"where clause must be an object, got %s", where.Kind())
}

func validateWhereRecord(rec *types.Record) error {
	var err error
	rec.Range(func(key string, v types.Value) bool {
		switch strings.ToLower(key) {
		case "and", "or":
			list, ok := v.AsList()
			if !ok {
				err = types.Errorf(types.CodeWhereClauseUnparseable,
					"%q expects a list of clauses, got %s", key, v.Kind())
				return false
			}
			for i, item := range list {
				if item.IsNil() {
					continue
				}
				sub, ok := item.AsRecord()
				if !ok {
					err = types.Errorf(types.CodeWhereClauseUnparseable,
						"%q clause %d must be an object, got %s", key, i, item.Kind())
					return false
				}
				if err = validateWhereRecord(sub); err != nil {
					return false
				}
			}
		case "not":
			sub, ok := v.AsRecord()
			if !ok {
				err = types.Errorf(types.CodeWhereClauseUnparseable,
					"%q expects a single clause, got %s", key, v.Kind())
				return false
			}
			err = validateWhereRecord(sub)
			return err == nil
		}
		return true
	})
	return err
}

// ValidateAttributeName rejects names that cannot be queried back: the
// empty name, the select wildcard and the where control keys.
func ValidateAttributeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("attribute name cannot be empty")
	}
	if IsReservedAttributeName(name) {
		return fmt.Errorf("'%s' is a reserved attribute name", name)
	}
	return nil
}

// IsReservedAttributeName checks if a name collides with query syntax
func IsReservedAttributeName(name string) bool {
	reserved := []string{"*", "and", "or", "not"}

	name = strings.ToLower(name)
	for _, reservedName := range reserved {
		if name == reservedName {
			return true
		}
	}
	return false
}

// ValidateRecord checks every attribute name of a record that is about to
// be stored, nested records included.
func ValidateRecord(r *types.Record) error {
	var err error
	r.Range(func(name string, v types.Value) bool {
		if err = ValidateAttributeName(name); err != nil {
			return false
		}
		if nested, ok := v.AsRecord(); ok {
			if err = ValidateRecord(nested); err != nil {
				err = fmt.Errorf("%s: %w", name, err)
				return false
			}
		}
		return true
	})
	return err
}

// ValidateCollectionName checks a collection name used by the store
func ValidateCollectionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("collection name '%s' contains invalid characters", name)
	}
	return nil
}
