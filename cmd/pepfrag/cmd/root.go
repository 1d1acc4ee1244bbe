// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const version = "1.0.0"

var (
	// Root-level flags
	verbose      bool
	logFile      string
	outputFormat string
)

const rootLongDescription = `PepFrag digests protein sequences with named cleavage rules and
computes theoretical fragment ion series for peptides.

Settings are read from flags, PEPFRAG_* environment variables and an
optional pepfrag.yaml in the working directory, in that order.`

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pepfrag",
		Short:         "PepFrag - in-silico digestion and fragmentation",
		Long:          rootLongDescription,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configureLogger(logFile, verbose)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(root)

	root.AddCommand(newDigestCmd())
	root.AddCommand(newFragmentCmd())
	root.AddCommand(newEnzymesCmd())

	return root
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	flags.StringVar(&logFile, "log-file", "", "Log file path (default from log.filename)")

	flags.StringVarP(&outputFormat, "format", "F", defaultFormat, "Output format: table, tsv or yaml")
	bindFlagToConfig(flags.Lookup("format"), formatKey)

	flags.String("mass-source", defaultMassSource, "Element masses: monoisotopic or average")
	bindFlagToConfig(flags.Lookup("mass-source"), massSourceKey)

	flags.String("mods", "", "CSV file of named modifications (name,mass)")
	bindFlagToConfig(flags.Lookup("mods"), modsFileKey)

	flags.String("enzymes", "", "File of additional cleavage rules")
	bindFlagToConfig(flags.Lookup("enzymes"), enzymesFileKey)
}

// bindFlagToConfig wires a cobra flag to a viper key so config and env
// values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute builds the command tree and runs it. Errors are returned to main.
func Execute() error {
	return newRootCmd().Execute()
}
