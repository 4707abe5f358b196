// Package fileprocessor handles file selection and batch processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2gbs/internal/options"
	"github.com/retroenv/vgm2gbs/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

// ErrFilesFailed is returned when at least one file of a batch failed to convert.
var ErrFilesFailed = errors.New("conversion failed")

// ProcessFiles converts all files selected by the options. The template
// ROM is loaded once and shared by all conversions. Files of a batch are
// converted concurrently, a failing file is logged and does not stop the
// remaining files.
func ProcessFiles(ctx context.Context, logger *log.Logger, opts options.Program) error {
	files, err := GetFilesToProcess(&opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found matching '%s'", opts.Batch)
	}

	p := pipeline.New(logger)
	template, err := p.LoadTemplate(opts)
	if err != nil {
		return err
	}

	var failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, file := range files {
		fileOpts := opts
		fileOpts.Input = file
		if opts.Batch != "" || opts.Output == "" {
			fileOpts.Output = GenerateOutputFilename(file)
		}

		g.Go(func() error {
			if _, err := p.Execute(ctx, fileOpts, template); err != nil {
				// cancellation (Ctrl+C) aborts the remaining files
				if errors.Is(err, context.Canceled) {
					return err
				}
				failed.Add(1)
				logger.Error("Converting failed", log.String("file", file), log.Err(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrFilesFailed, n, len(files))
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".gbs"
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("vgm2gbs", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
