package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/nanoquery/nanoquery"
	"github.com/arthur-debert/nanoquery/nanoquery/query"
	"github.com/arthur-debert/nanoquery/types"
)

func (cli *ViperCLI) addFindCommand() {
	findCmd := &cobra.Command{
		Use:   "find <collection> [-- filters...]",
		Short: "Query a collection",
		Long: `Run criteria over a collection and print the projected results.
Joins (given through --criteria) resolve against the whole dataset.

Examples:
  nanoquery find users --where '{"age": {">": 26}}' --sort '{"name": 1}'
  nanoquery find users --select name --indices -- --role__in=admin,user`,

		Args: exactPositional(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.executeFind(cmd, args[0])
		},
	}

	addCriteriaFlags(findCmd.Flags())
	findCmd.Flags().Bool("indices", false, "Prefix each result with the index of its source record")

	cli.rootCmd.AddCommand(findCmd)
}

func (cli *ViperCLI) executeFind(cmd *cobra.Command, collection string) error {
	criteria, err := buildCriteria(cmd)
	if err != nil {
		return err
	}

	s, err := cli.openStore("find", false)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	logQuery("find", collection, criteria)
	result, err := s.Find(collection, criteria)
	if err != nil {
		return WrapError("find", err)
	}

	records := result.Results
	if withIndices, _ := cmd.Flags().GetBool("indices"); withIndices {
		records = make([]*types.Record, len(result.Results))
		for i, r := range result.Results {
			indexed := types.RecordOf("_index", result.Indices[i])
			indexed.Merge(r)
			records[i] = indexed
		}
	}

	format, quiet := cli.output()
	return writeRecords(cmd.OutOrStdout(), format, records, quiet)
}

func (cli *ViperCLI) addCountCommand() {
	countCmd := &cobra.Command{
		Use:   "count <collection> [-- filters...]",
		Short: "Count the records matching a where clause",
		Args:  exactPositional(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := buildCriteria(cmd)
			if err != nil {
				return err
			}

			s, err := cli.openStore("count", false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			logQuery("count", args[0], criteria)
			n, err := s.Count(args[0], criteria.Where)
			if err != nil {
				return WrapError("count", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
			return err
		},
	}

	countCmd.Flags().String("where", "", "Where clause as JSON/YAML")

	cli.rootCmd.AddCommand(countCmd)
}

func (cli *ViperCLI) addCreateCommand() {
	createCmd := &cobra.Command{
		Use:   "create <collection> <record>",
		Short: "Add a record to a collection",
		Long: `Add a record, given as inline JSON/YAML or @file, to a collection.
The collection is created when missing; an "id" is generated when the record has none.

Examples:
  nanoquery create pets '{"name": "Nemo", "species": "fish", "owner": 3}'
  nanoquery create pets @nemo.yaml`,

		Args: exactPositional(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(args[1])
			if err != nil {
				return WrapError("create", err)
			}
			record, err := types.ParseRecord(data)
			if err != nil {
				return NewValidationError("create", "record", args[1], "Records must be JSON or YAML objects")
			}

			s, err := cli.openStore("create", true)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			created, err := s.Create(args[0], record)
			if err != nil {
				return WrapError("create", err)
			}

			format, quiet := cli.output()
			return writeRecords(cmd.OutOrStdout(), format, []*types.Record{created}, quiet)
		},
	}

	cli.rootCmd.AddCommand(createCmd)
}

func (cli *ViperCLI) addUpdateCommand() {
	updateCmd := &cobra.Command{
		Use:   "update <collection> --set <changes> [-- filters...]",
		Short: "Merge changes into the records criteria select",
		Long: `Merge the attributes of --set into every record the criteria select.
Where, sort, skip and limit pick the targets; select and joins are ignored.

Examples:
  nanoquery update users --set '{"role": "member"}' -- --role=user
  nanoquery update users --set '{"last": true}' --sort '{"id": -1}' --limit 1`,

		Args: exactPositional(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := buildCriteria(cmd)
			if err != nil {
				return err
			}

			src, _ := cmd.Flags().GetString("set")
			if src == "" {
				return NewValidationError("update", "changes", src, "Pass the changes with --set '{\"attr\": value}'")
			}
			data, err := readSource(src)
			if err != nil {
				return WrapError("update", err)
			}
			changes, err := types.ParseRecord(data)
			if err != nil {
				return NewValidationError("update", "changes", src, "Changes must be a JSON or YAML object")
			}

			s, err := cli.openStore("update", true)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			logQuery("update", args[0], criteria)
			updated, err := s.Update(args[0], criteria, changes)
			if err != nil {
				return WrapError("update", err)
			}

			format, quiet := cli.output()
			return writeRecords(cmd.OutOrStdout(), format, updated, quiet)
		},
	}

	addCriteriaFlags(updateCmd.Flags())
	updateCmd.Flags().String("set", "", "Changes as inline JSON/YAML, or @file")

	cli.rootCmd.AddCommand(updateCmd)
}

func (cli *ViperCLI) addDestroyCommand() {
	destroyCmd := &cobra.Command{
		Use:   "destroy <collection> [-- filters...]",
		Short: "Remove the records criteria select",
		Long: `Remove every record the criteria select and print them.
Without a where clause or filters, --all is required.

Examples:
  nanoquery destroy pets -- --species=cat
  nanoquery destroy sessions --all`,

		Args: exactPositional(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := buildCriteria(cmd)
			if err != nil {
				return err
			}

			all, _ := cmd.Flags().GetBool("all")
			if isEmptyWhere(criteria.Where) && !all {
				return &CLIError{
					Operation:   "destroy",
					Cause:       "refusing to remove every record",
					Suggestions: []string{"Add a where clause or filters", "Pass --all to empty the collection"},
				}
			}

			s, err := cli.openStore("destroy", true)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			logQuery("destroy", args[0], criteria)
			removed, err := s.Destroy(args[0], criteria)
			if err != nil {
				return WrapError("destroy", err)
			}

			format, quiet := cli.output()
			return writeRecords(cmd.OutOrStdout(), format, removed, quiet)
		},
	}

	addCriteriaFlags(destroyCmd.Flags())
	destroyCmd.Flags().Bool("all", false, "Allow removing every record of the collection")

	cli.rootCmd.AddCommand(destroyCmd)
}

func (cli *ViperCLI) addExplainCommand() {
	explainCmd := &cobra.Command{
		Use:   "explain <collection> [-- filters...]",
		Short: "Print the SQL equivalent of the criteria",
		Long: `Render the criteria as a SQL SELECT over the collection, with ? placeholders.
Nothing is executed and no dataset is needed.`,

		Args: exactPositional(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := buildCriteria(cmd)
			if err != nil {
				return err
			}

			sql, sqlArgs, err := nanoquery.Explain(args[0], criteria)
			if err != nil {
				return WrapError("explain", err)
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, sql); err != nil {
				return err
			}
			if len(sqlArgs) == 0 {
				return nil
			}
			encoded, err := json.Marshal(sqlArgs)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "args: %s\n", encoded)
			return err
		},
	}

	addCriteriaFlags(explainCmd.Flags())

	cli.rootCmd.AddCommand(explainCmd)
}

func (cli *ViperCLI) addValidateCommand() {
	validateCmd := &cobra.Command{
		Use:   "validate [-- filters...]",
		Short: "Check criteria without running them",
		Args:  exactPositional(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := buildCriteria(cmd)
			if err != nil {
				return err
			}

			if err := nanoquery.ValidateWhereClause(criteria.Where); err != nil {
				return WrapError("validate", err)
			}
			if err := nanoquery.ValidateSortClause(criteria.Sort); err != nil {
				return WrapError("validate", err)
			}
			if _, err := query.Prepare(criteria); err != nil {
				return WrapError("validate", err)
			}

			if _, quiet := cli.output(); !quiet {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "criteria ok")
			}
			return err
		},
	}

	addCriteriaFlags(validateCmd.Flags())

	cli.rootCmd.AddCommand(validateCmd)
}

func (cli *ViperCLI) addCollectionsCommand() {
	collectionsCmd := &cobra.Command{
		Use:   "collections",
		Short: "List the collections of the dataset with their sizes",
		Args:  exactPositional(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cli.openStore("list collections", false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			counts, err := s.Collections()
			if err != nil {
				return WrapError("list collections", err)
			}

			names := make([]string, 0, len(counts))
			for name := range counts {
				names = append(names, name)
			}
			sort.Strings(names)

			records := make([]*types.Record, len(names))
			for i, name := range names {
				records[i] = types.RecordOf("collection", name, "records", counts[name])
			}

			format, quiet := cli.output()
			return writeRecords(cmd.OutOrStdout(), format, records, quiet)
		},
	}

	cli.rootCmd.AddCommand(collectionsCmd)
}
