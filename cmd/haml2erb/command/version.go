package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags; "dev" otherwise.
var version = "dev"

// NewVersionCommand builds the `version` subcommand.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("haml2erb %s\n", version)
			return nil
		},
	}
}
