// Package pipeline orchestrates the conversion workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2gbs/internal/converter"
	"github.com/retroenv/vgm2gbs/internal/detector"
	"github.com/retroenv/vgm2gbs/internal/loader"
	"github.com/retroenv/vgm2gbs/internal/options"
	"github.com/retroenv/vgm2gbs/internal/verification"
)

// outputFileMode is the mode of written GBS files, temp files are created
// readable by the owner only.
const outputFileMode = 0o644

// Pipeline orchestrates the complete conversion workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new conversion pipeline.
func New(logger *log.Logger) *Pipeline {
	det := detector.New(logger)
	return &Pipeline{
		logger:   logger,
		detector: det,
		loader:   loader.New(det),
	}
}

// LoadTemplate reads the playback engine template ROM configured in the options.
func (p *Pipeline) LoadTemplate(opts options.Program) ([]byte, error) {
	template, err := p.loader.LoadTemplate(opts.Template)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	return template, nil
}

// Execute runs the complete conversion pipeline for the input file of the
// options. The output file is only written after a successful conversion.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, template []byte) (*converter.Result, error) {
	data, err := p.loader.Load(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("loading input: %w", err)
	}

	return p.ExecuteWithData(ctx, opts, data, template)
}

// ExecuteWithData runs the conversion pipeline with already loaded and
// uncompressed VGM data.
func (p *Pipeline) ExecuteWithData(ctx context.Context, opts options.Program, data, template []byte) (*converter.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	convOpts := converter.Options{
		EngineRate: opts.EngineRate,
		TMAOffset:  opts.TMAOffset,
	}
	result, err := converter.Convert(data, template, convOpts)
	if err != nil {
		return nil, fmt.Errorf("converting: %w", err)
	}

	p.printInfo(opts, result)

	if err := writeFile(opts.Output, result.Data); err != nil {
		return nil, err
	}

	if opts.Verify {
		if err := verification.VerifyOutput(p.logger, opts.Output, result); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful", log.String("file", opts.Output))
	}

	return result, nil
}

// writeFile writes the data to a temporary file next to the destination and
// renames it, so that an interrupted run never leaves a partial output file.
func writeFile(path string, data []byte) error {
	if path == "" {
		return errors.New("no output file specified")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing file '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(outputFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting mode of file '%s': %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing file '%s': %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming file to '%s': %w", path, err)
	}
	return nil
}

// printInfo prints information about the converted song.
func (p *Pipeline) printInfo(opts options.Program, result *converter.Result) {
	if opts.Quiet {
		return
	}

	trackInfo := "<none>"
	if result.Tag != nil {
		trackInfo = result.Tag.TrackInfo()
	}

	p.logger.Info("Converted VGM file",
		log.String("file", opts.Input),
		log.String("output", opts.Output),
		log.String("version", result.Header.VersionString()),
		log.String("track", trackInfo),
	)
	header := result.Header
	p.logger.Debug("VGM details",
		log.Uint32("samples", header.TotalSamples),
		log.Bool("loop", header.HasLoop()),
		log.Uint32("loop_samples", header.LoopSamples),
		log.Uint32("dmg_clock", header.DMGClock),
	)
	p.logger.Debug("Conversion details",
		log.Int("engine_rate", opts.EngineRate),
		log.Int("tma_offset", opts.TMAOffset),
		log.Hex("tma", result.Image.Header.Timer.TMA),
		log.Hex("tac", result.Image.Header.Timer.TAC),
		log.Int("banks", len(result.Song.Banks)),
	)

	if loop := result.Song.Loop; loop != nil {
		p.logger.Debug("Loop point",
			log.Uint16("bank", loop.Bank),
			log.Hex("address", loop.Address),
		)
	}
}
