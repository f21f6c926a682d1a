package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/nanoquery/types"
)

// outputFormats lists the values accepted by --format
var outputFormats = []string{"table", "json", "yaml", "csv"}

// writeRecords renders records in the requested format. quiet drops the
// table and csv headers.
func writeRecords(w io.Writer, format string, records []*types.Record, quiet bool) error {
	switch strings.ToLower(format) {
	case "json":
		if records == nil {
			records = []*types.Record{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml":
		if records == nil {
			records = []*types.Record{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()

	case "csv":
		columns := columnsOf(records)
		cw := csv.NewWriter(w)
		if !quiet {
			if err := cw.Write(columns); err != nil {
				return err
			}
		}
		for _, r := range records {
			if err := cw.Write(rowOf(r, columns)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case "table", "":
		columns := columnsOf(records)
		table := tablewriter.NewWriter(w)
		table.SetAutoWrapText(false)
		if !quiet {
			table.SetHeader(columns)
		}
		for _, r := range records {
			table.Append(rowOf(r, columns))
		}
		table.Render()
		return nil

	default:
		return NewValidationError("write output", "format", format, CommonSuggestions.CheckFormat)
	}
}

// columnsOf returns every attribute name in order of first appearance
func columnsOf(records []*types.Record) []string {
	seen := map[string]bool{}
	columns := []string{}
	for _, r := range records {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}

func rowOf(r *types.Record, columns []string) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		v, ok := r.Get(c)
		if !ok {
			continue
		}
		row[i] = cellValue(v)
	}
	return row
}

// cellValue prints scalars plainly and nested values as compact JSON
func cellValue(v types.Value) string {
	switch v.Kind() {
	case types.KindList, types.KindRecord:
		data, err := json.Marshal(v)
		if err != nil {
			return v.String()
		}
		return string(data)
	case types.KindNull, types.KindUndefined:
		return ""
	default:
		return v.String()
	}
}
