// Package command implements the haml2erb CLI: a cobra root command
// plus convert/validate/version subcommands, following the common Go
// CLI layout of a root command wiring in independently-flagged
// subcommands.
package command

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// debugMode is set by the persistent --debug flag; when true, a failed
// run prints a full stack trace alongside its error instead of just
// the error message.
var debugMode bool

// Execute runs the root command.
func Execute() {
	rootCmd := &cobra.Command{
		Use:     "haml2erb",
		Short:   "One-shot HAML to ERB markup transpiler",
		Version: version,
		Long: `haml2erb converts HAML templates to equivalent ERB templates.

Available Commands:
  convert    Convert a HAML file or directory to ERB (default)
  validate   Check that a file's HAML converts to structurally valid ERB
  version    Show version information`,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "print a full stack trace alongside any error")

	convertCmd := NewConvertCommand()
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewVersionCommand())

	// The root command runs convert by default and accepts its flags.
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.Flags().AddFlagSet(convertCmd.Flags())
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return convertCmd.RunE(cmd, args)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if debugMode {
			fmt.Fprintln(os.Stderr, string(debug.Stack()))
		}
		os.Exit(1)
	}
}
