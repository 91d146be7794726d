package command

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/go-haml/haml2erb/config"
	"github.com/go-haml/haml2erb/driver"
	"github.com/go-haml/haml2erb/haml"
	"github.com/go-haml/haml2erb/internal/debug"
	"github.com/go-haml/haml2erb/validator"
)

// NewConvertCommand builds the `convert` subcommand, which is also the
// root command's default action. It accepts a single path that is
// either a `.haml` file or a directory to walk recursively.
func NewConvertCommand() *cobra.Command {
	var (
		check          bool
		dryRun         bool
		deleteOriginal bool
		force          bool
		color          bool
		dumpTree       bool
	)

	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Convert a HAML file or directory to ERB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			path := args[0]
			if !cmd.Flags().Changed("color") {
				color = cfg.Color
			}

			if deleteOriginal && !force {
				return fmt.Errorf("--delete requires --force to confirm deletion of originals")
			}

			if dumpTree {
				return runDumpAST(path)
			}

			opts := driver.Options{
				DeleteOriginal:  deleteOriginal,
				Validate:        check,
				DryRun:          dryRun,
				ValidatorConfig: validator.Config{ValidatorCommand: cfg.ValidatorCommand},
				Color:           color,
				StderrWarnings:  true,
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			if info.IsDir() {
				results, err := driver.ConvertDirectory(path, opts)
				if err != nil {
					return err
				}
				return reportResults(results, color)
			}

			result := driver.ConvertFile(path, opts)
			return reportResults([]driver.FileResult{result}, color)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "validate emitted ERB structurally (and externally, if configured)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print a diff of the would-be output instead of writing it")
	cmd.Flags().BoolVar(&deleteOriginal, "delete", false, "delete the original .haml file after a successful conversion")
	cmd.Flags().BoolVar(&force, "force", false, "required alongside --delete to confirm deletion")
	cmd.Flags().BoolVar(&color, "color", true, "colorize warnings written to stderr")
	cmd.Flags().BoolVar(&dumpTree, "dump-ast", false, "print the parsed HAML AST instead of converting")

	return cmd
}

// reportResults writes per-file outcomes to stdout/stderr and returns a
// non-nil error if any file failed to convert or (when validated)
// failed validation.
func reportResults(results []driver.FileResult, color bool) error {
	var failed int

	for _, r := range results {
		debug.Log("report", "file=%s errors=%d warnings=%d", r.Path, len(r.Errors), len(r.Warnings))

		if len(r.Errors) > 0 {
			failed++
			for _, e := range r.Errors {
				printErr(color, "%s: %s", r.Path, e)
			}
			continue
		}

		if r.Valid != nil && !r.Valid.Success() {
			failed++
			for _, ve := range r.Valid.Errors {
				printErr(color, "%s: validation: %s", r.Path, ve.String())
			}
			continue
		}

		if r.DryRun {
			printDryRunDiff(r)
			continue
		}

		fmt.Printf("%s -> %s\n", r.Path, r.ERBPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}

func printErr(color bool, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if color {
		fmt.Fprintln(os.Stderr, aurora.Red(msg))
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

// printDryRunDiff shows a diff between any existing `.erb` sibling and
// the converted output, so a reviewer can see exactly what a real
// write would change.
func printDryRunDiff(r driver.FileResult) {
	existing := ""
	if data, err := os.ReadFile(r.ERBPath); err == nil {
		existing = string(data)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(existing, r.Content, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	fmt.Printf("--- %s\n+++ %s (dry run)\n", r.ERBPath, r.ERBPath)
	fmt.Println(dmp.DiffPrettyText(diffs))
}

// runDumpAST parses path — a single file or a directory walked
// recursively for `.haml` files — and prints each file's HAML AST
// without emitting ERB.
func runDumpAST(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(p, ".haml") {
				return nil
			}
			fmt.Printf("== %s ==\n", p)
			return dumpOne(p)
		})
	}
	return dumpOne(path)
}

func dumpOne(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	root, err := haml.Parse(string(data))
	if err != nil {
		return err
	}
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	_, err = fmt.Fprint(w, dumpAST(root))
	return err
}
