package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-haml/haml2erb/config"
	"github.com/go-haml/haml2erb/convert"
	"github.com/go-haml/haml2erb/validator"
)

// NewValidateCommand builds the `validate` subcommand: convert a single
// HAML file in memory and report whether the result is structurally
// valid ERB, without writing anything to disk.
func NewValidateCommand() *cobra.Command {
	var color bool

	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Check that a file's HAML converts to structurally valid ERB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			path := args[0]
			if !cmd.Flags().Changed("color") {
				color = cfg.Color
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			result, validation, err := convert.ConvertAndValidate(
				string(data),
				convert.Options{},
				validator.Config{ValidatorCommand: cfg.ValidatorCommand},
			)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				printErr(color, "%s: warning: %s", path, w.String())
			}

			if !validation.Success() {
				for _, e := range validation.Errors {
					printErr(color, "%s: %s", path, e.String())
				}
				return fmt.Errorf("%s: invalid", path)
			}

			fmt.Printf("%s: ok\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&color, "color", true, "colorize diagnostics written to stderr")

	return cmd
}
