// Package converter implements the VGM to GBS conversion.
package converter

import (
	"fmt"

	"github.com/retroenv/vgm2gbs/internal/encoder"
	"github.com/retroenv/vgm2gbs/internal/gbs"
	"github.com/retroenv/vgm2gbs/internal/gd3"
	"github.com/retroenv/vgm2gbs/internal/vgm"
)

// Options controls the conversion.
type Options = gbs.Options

// DefaultOptions returns the options for a 60 Hz engine rate.
func DefaultOptions() Options {
	return gbs.DefaultOptions()
}

// Result is the outcome of a conversion.
type Result struct {
	Data   []byte // the GBS file
	Header vgm.Header
	Tag    *gd3.Tag // nil if the VGM file has no GD3 block
	Image  *gbs.Image
	Song   *encoder.Song
}

// Convert converts the VGM file data to a GBS file using the playback
// engine template ROM. The conversion is deterministic, neither input
// buffer is modified.
func Convert(data, template []byte, opts Options) (*Result, error) {
	file, err := vgm.Load(data)
	if err != nil {
		return nil, fmt.Errorf("loading VGM file: %w", err)
	}

	song, err := encoder.Encode(file.Commands())
	if err != nil {
		return nil, fmt.Errorf("encoding song: %w", err)
	}

	var meta *gbs.Metadata
	if file.Metadata != nil {
		meta = &gbs.Metadata{
			Title:  file.Metadata.TrackName,
			Author: file.Metadata.Author,
			Game:   file.Metadata.GameName,
		}
	}

	img, err := gbs.Build(template, song, meta, opts)
	if err != nil {
		return nil, fmt.Errorf("building GBS image: %w", err)
	}

	out, err := img.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding GBS image: %w", err)
	}

	return &Result{
		Data:   out,
		Header: file.Header,
		Tag:    file.Metadata,
		Image:  img,
		Song:   song,
	}, nil
}
