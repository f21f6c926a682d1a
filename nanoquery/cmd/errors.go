package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/arthur-debert/nanoquery/types"
)

// CLIError represents a user-friendly CLI error with context and suggestions
type CLIError struct {
	Operation   string   // The operation that failed (e.g., "find", "create")
	Cause       string   // The underlying cause (e.g., "dataset file not found")
	Details     string   // Additional technical details
	Suggestions []string // Helpful suggestions for the user
	Underlying  error    // Original error for debugging
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}

	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}

	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return msg.String()
}

// Unwrap returns the underlying error for error chain compatibility
func (e *CLIError) Unwrap() error {
	return e.Underlying
}

// NewValidationError creates an error for validation failures
func NewValidationError(operation, field, value string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("invalid %s: %q", field, value),
		Suggestions: suggestions,
	}
}

// NewConfigError creates an error for configuration issues
func NewConfigError(operation, issue string, suggestions ...string) *CLIError {
	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("configuration error: %s", issue),
		Suggestions: suggestions,
	}
}

// NewStoreError creates an error for store and query failures
func NewStoreError(operation string, underlying error, suggestions ...string) *CLIError {
	cause := "store operation failed"
	details := ""

	if underlying != nil {
		details = underlying.Error()

		var coded *types.Error
		errStr := strings.ToLower(underlying.Error())
		switch {
		case errors.As(underlying, &coded):
			cause = "invalid criteria"
			suggestions = append(suggestions, CommonSuggestions.CheckCriteria)
		case strings.Contains(errStr, "no such file"):
			cause = "dataset file not found"
		case strings.Contains(errStr, "permission denied"):
			cause = "insufficient permissions to access the dataset"
		case strings.Contains(errStr, "file lock"):
			cause = "dataset is currently locked by another process"
		case strings.Contains(errStr, "invalid"):
			cause = "invalid data provided"
		}
	}

	return &CLIError{
		Operation:   operation,
		Cause:       cause,
		Details:     details,
		Suggestions: suggestions,
		Underlying:  underlying,
	}
}

// NewFilterError creates an error for filtering issues
func NewFilterError(operation, filter, issue string) *CLIError {
	suggestions := []string{
		"Use format: --field=value or --field__operator=value",
		"Available operators: eq, ne, gt, gte, lt, lte, in, like, contains, startswith, endswith",
		"Use --or / --and to combine condition groups",
		"Place filters after --, e.g. nanoquery find users -- --age__gt=30",
	}

	return &CLIError{
		Operation:   operation,
		Cause:       fmt.Sprintf("invalid filter %q: %s", filter, issue),
		Suggestions: suggestions,
	}
}

// WrapError wraps an existing error with CLI-friendly context
func WrapError(operation string, err error, suggestions ...string) error {
	if err == nil {
		return nil
	}

	// If it's already a CLIError, just update the operation
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		if cliErr.Operation == "" {
			cliErr.Operation = operation
		}
		return cliErr
	}

	return NewStoreError(operation, err, suggestions...)
}

// printError writes err to w in red unless colors are disabled
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprint(w, "Error: ")
	_, _ = fmt.Fprintln(w, err.Error())
}

// CommonSuggestions are the hints shared across commands
var CommonSuggestions = struct {
	CheckData     string
	CheckCriteria string
	CheckFormat   string
	RunHelp       string
	ReadOnlyGlob  string
}{
	CheckData:     "Verify --data points to a dataset file (or set NANOQUERY_DATA)",
	CheckCriteria: "Check the where/sort/select clauses, or run 'nanoquery validate'",
	CheckFormat:   "Supported output formats: table, json, yaml, csv",
	RunHelp:       "Run command with --help for usage information",
	ReadOnlyGlob:  "Glob datasets are read-only; point --data at a single file to modify it",
}
