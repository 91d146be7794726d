// Package driver implements the file/directory driver: convert_file
// and convert_directory, the only two operations in this system with
// any I/O or concurrency. Directory conversion fans out across files
// with a bounded errgroup.Group; each file's error is captured on its
// own result rather than aborting the rest of the batch.
package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/go-haml/haml2erb/convert"
	"github.com/go-haml/haml2erb/diagnostics"
	"github.com/go-haml/haml2erb/validator"
)

// Options controls one convert_file or convert_directory call.
type Options struct {
	DeleteOriginal   bool
	Validate         bool
	DryRun           bool
	ValidatorConfig  validator.Config
	Color            bool
	StderrWarnings   bool
	// Concurrency bounds convert_directory's fan-out; zero means
	// runtime.NumCPU().
	Concurrency int
}

// FileResult is the outcome of converting one file.
type FileResult struct {
	Path     string
	ERBPath  string
	Content  string
	DryRun   bool
	Skipped  bool
	Errors   []string
	Warnings []diagnostics.Warning
	Valid    *validator.Result
}

// ConvertFile implements convert_file: read path, convert its HAML to
// ERB, optionally validate, optionally write to path with its `.haml`
// suffix replaced by `.erb`, optionally delete the original. I/O errors
// and HAML syntax errors are captured on the result rather than
// returned rather than aborting the whole file or batch.
func ConvertFile(path string, opts Options) FileResult {
	res := FileResult{Path: path, ERBPath: erbPath(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Errors = append(res.Errors, fmt.Sprintf("file not found: %s", path))
		} else if errors.Is(err, fs.ErrPermission) {
			res.Errors = append(res.Errors, fmt.Sprintf("permission denied reading %s", path))
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
		res.Skipped = true
		return res
	}

	sink := diagnostics.NewSink(opts.StderrWarnings, opts.Color)
	result, err := convert.Convert(string(data), convert.Options{Warnings: sink})
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		res.Skipped = true
		return res
	}
	res.Warnings = result.Warnings

	if opts.Validate {
		v := validator.Validate(result.ERB, opts.ValidatorConfig)
		res.Valid = &v
	}

	if opts.DryRun {
		res.DryRun = true
		res.Content = result.ERB
		return res
	}

	if err := os.WriteFile(res.ERBPath, []byte(result.ERB), 0o644); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			res.Errors = append(res.Errors, fmt.Sprintf("permission denied writing %s", res.ERBPath))
		} else {
			res.Errors = append(res.Errors, err.Error())
		}
		res.Skipped = true
		return res
	}

	if opts.DeleteOriginal {
		if err := os.Remove(path); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("converted but failed to delete original: %v", err))
		}
	}

	return res
}

// ConvertDirectory recursively finds `*.haml` under root and converts
// each one, fanning out across a bounded worker pool. Results are
// returned in filepath.WalkDir's visiting order (lexical within each
// directory) regardless of completion order.
func ConvertDirectory(root string, opts Options) ([]FileResult, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".haml") {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]FileResult, len(paths))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			results[i] = ConvertFile(p, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// erbPath replaces a trailing `.haml` suffix with `.erb`.
func erbPath(path string) string {
	return strings.TrimSuffix(path, ".haml") + ".erb"
}
