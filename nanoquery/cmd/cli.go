package main

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arthur-debert/nanoquery/formats"
	"github.com/arthur-debert/nanoquery/nanoquery/storage"
	"github.com/arthur-debert/nanoquery/nanoquery/store"
)

// ViperCLI wires the nanoquery commands to flags, NANOQUERY_* environment
// variables and an optional config file
type ViperCLI struct {
	rootCmd   *cobra.Command
	viperInst *viper.Viper
	out       io.Writer
	errOut    io.Writer
}

// NewViperCLI creates the CLI writing to stdout and stderr
func NewViperCLI() *ViperCLI {
	return newViperCLI(os.Stdout, os.Stderr)
}

func newViperCLI(out, errOut io.Writer) *ViperCLI {
	cli := &ViperCLI{
		viperInst: viper.New(),
		out:       out,
		errOut:    errOut,
	}

	cli.setupViperConfig()
	cli.createRootCommand()
	cli.addCommands()

	return cli
}

// setupViperConfig configures Viper with environment variables and config files
func (cli *ViperCLI) setupViperConfig() {
	// NANOQUERY_CONFIG names the config file explicitly
	if configFile := os.Getenv("NANOQUERY_CONFIG"); configFile != "" {
		cli.viperInst.SetConfigFile(configFile)
	} else {
		// nanoquery.json or nanoquery.yaml
		cli.viperInst.SetConfigName("nanoquery")
		cli.viperInst.AddConfigPath(".")
		cli.viperInst.AddConfigPath("$HOME/.nanoquery")
		cli.viperInst.AddConfigPath("/etc/nanoquery")
	}

	cli.viperInst.AutomaticEnv()
	cli.viperInst.SetEnvPrefix("NANOQUERY")

	// Replace dash with underscore in env vars (e.g., --log-level -> NANOQUERY_LOG_LEVEL)
	cli.viperInst.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Read config file if it exists (ignore errors)
	_ = cli.viperInst.ReadInConfig()
}

// createRootCommand creates the root Cobra command with Viper integration
func (cli *ViperCLI) createRootCommand() {
	cli.rootCmd = &cobra.Command{
		Use:   "nanoquery",
		Short: "Query and edit schemaless datasets",
		Long: `nanoquery runs declarative criteria (where, sort, skip, limit, select, joins)
over the collections of a JSON, YAML or MessagePack dataset file.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (NANOQUERY_*)
3. Configuration file (NANOQUERY_CONFIG, or nanoquery.json/yaml in ., ~/.nanoquery, /etc/nanoquery)

Filters follow "--" and are ANDed within a group; --or and --and start a new
group, combined left to right.

Examples:
  nanoquery -d universe.json find users --sort "name desc" --select name,age
  nanoquery -d universe.json find users -- --age__gt=26 --or --role=guest
  nanoquery -d 'data/**/*.yaml' count pets --where '{"species": "cat"}'
  nanoquery -d universe.json find users --criteria @criteria.json -f json
  NANOQUERY_DATA=universe.json nanoquery explain users -- --name__like=a%`,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = cli.viperInst.BindPFlags(cmd.Flags())

			if cli.viperInst.GetBool("no-color") {
				color.NoColor = true
			}

			if err := initLogging(cli.viperInst.GetString("log-level"), cli.errOut); err != nil {
				return NewConfigError("initialize logging", err.Error())
			}

			_, filterArgs := splitArgs(cmd, args)
			query, err := parseFilters(filterArgs)
			if err != nil {
				return err
			}
			cmd.SetContext(withQuery(cmd.Context(), query))
			return nil
		},
	}

	cli.rootCmd.SetOut(cli.out)
	cli.rootCmd.SetErr(cli.errOut)

	cli.addGlobalFlags()
}

// addGlobalFlags adds persistent flags that apply to all commands
func (cli *ViperCLI) addGlobalFlags() {
	flags := cli.rootCmd.PersistentFlags()

	flags.StringP("data", "d", "", "Dataset file or glob (globs are read-only)")
	flags.StringP("format", "f", "table", "Output format (table|json|yaml|csv)")
	flags.String("log-level", "warn", "Log level (debug|info|warn|error)")
	flags.BoolP("quiet", "q", false, "Suppress headers and extra output")
	flags.Bool("no-color", false, "Disable colored output")

	for _, flag := range []string{"data", "format", "log-level", "quiet", "no-color"} {
		_ = cli.viperInst.BindPFlag(flag, flags.Lookup(flag))
	}
}

// addCommands adds all the CLI commands
func (cli *ViperCLI) addCommands() {
	cli.addFindCommand()
	cli.addCountCommand()
	cli.addCreateCommand()
	cli.addUpdateCommand()
	cli.addDestroyCommand()
	cli.addExplainCommand()
	cli.addValidateCommand()
	cli.addCollectionsCommand()
}

// openStore opens the configured dataset. A glob is loaded into memory and
// cannot be written back.
func (cli *ViperCLI) openStore(operation string, writable bool) (*store.Store, error) {
	path := cli.viperInst.GetString("data")
	if path == "" {
		return nil, NewConfigError(operation, "no dataset given", CommonSuggestions.CheckData)
	}

	if formats.IsGlob(path) {
		if writable {
			return nil, NewConfigError(operation, "cannot modify a glob dataset", CommonSuggestions.ReadOnlyGlob)
		}
		d, err := formats.LoadGlob(path)
		if err != nil {
			return nil, WrapError(operation, err, CommonSuggestions.CheckData)
		}
		return store.New(storage.NewMemoryStorage(d), store.WithLogger(mainLogger)), nil
	}

	backend, err := storage.NewFileStorage(path)
	if err != nil {
		return nil, WrapError(operation, err, CommonSuggestions.CheckData)
	}
	return store.New(backend, store.WithLogger(mainLogger)), nil
}

func (cli *ViperCLI) output() (format string, quiet bool) {
	return cli.viperInst.GetString("format"), cli.viperInst.GetBool("quiet")
}

// Execute runs the CLI
func (cli *ViperCLI) Execute() error {
	return cli.rootCmd.Execute()
}

// GetRootCommand returns the root Cobra command for testing
func (cli *ViperCLI) GetRootCommand() *cobra.Command {
	return cli.rootCmd
}
