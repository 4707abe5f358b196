// Package verification verifies that the generated output file contains the converted song.
package verification

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2gbs/internal/converter"
	"github.com/retroenv/vgm2gbs/internal/encoder"
	"github.com/retroenv/vgm2gbs/internal/gbs"
)

// VerifyOutput reads the written GBS file back and verifies that it matches
// the conversion result.
func VerifyOutput(logger *log.Logger, path string, result *converter.Result) error {
	if path == "" {
		return errors.New("can not verify console output")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading output file for comparison: %w", err)
	}

	if err := checkBufferEqual(logger, result.Data, data); err != nil {
		return fmt.Errorf("comparing output file: %w", err)
	}
	if err := compareImageDetails(logger, data, result); err != nil {
		return fmt.Errorf("comparing GBS details: %w", err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, expected, got []byte) error {
	if len(expected) != len(got) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(expected), len(got))
	}

	var diffs uint64
	for i := range expected {
		if expected[i] == got[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", expected[i]),
				log.Hex("got", got[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}

func compareImageDetails(logger *log.Logger, data []byte, result *converter.Result) error {
	f, err := gbs.ParseFile(data)
	if err != nil {
		return fmt.Errorf("parsing GBS file: %w", err)
	}

	if f.Header != result.Image.Header {
		return fmt.Errorf("header mismatch, %+v != %+v", result.Image.Header, f.Header)
	}
	meta, err := result.Image.Metadata.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if !bytes.Equal(meta, data[gbs.HeaderSize:gbs.HeaderSize+gbs.MetadataSize]) {
		return fmt.Errorf("metadata mismatch, %q != %q", meta, data[gbs.HeaderSize:gbs.HeaderSize+gbs.MetadataSize])
	}

	timer, err := f.Timer()
	if err != nil {
		return fmt.Errorf("reading timer: %w", err)
	}
	if timer != f.Header.Timer {
		return fmt.Errorf("ROM timer %+v does not match header timer %+v", timer, f.Header.Timer)
	}

	if err := compareLoopPoint(f, result.Song); err != nil {
		return err
	}

	for i, expected := range result.Song.Banks {
		bank, err := f.Bank(i + 1)
		if err != nil {
			return fmt.Errorf("reading bank %d: %w", i+1, err)
		}
		if !bytes.Equal(expected, bank[:len(expected)]) {
			logger.Error("Bank mismatch", log.Int("bank", i+1))
			return checkBufferEqual(logger, expected, bank[:len(expected)])
		}
	}
	return nil
}

func compareLoopPoint(f *gbs.File, song *encoder.Song) error {
	if song.Loop == nil {
		return nil
	}

	loop, err := f.LoopPoint()
	if err != nil {
		return fmt.Errorf("reading loop point: %w", err)
	}
	if loop != *song.Loop {
		return fmt.Errorf("loop point mismatch, %+v != %+v", *song.Loop, loop)
	}
	return nil
}
