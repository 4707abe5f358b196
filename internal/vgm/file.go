package vgm

import (
	"fmt"

	"github.com/retroenv/vgm2gbs/internal/gd3"
)

// File is a parsed VGM file.
type File struct {
	Header   Header
	Metadata *gd3.Tag // nil if the file has no GD3 block

	data []byte
}

// Load parses the header and the optional GD3 block of a VGM file.
// The command stream is decoded lazily by Commands.
func Load(data []byte) (*File, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	f := &File{
		Header: header,
		data:   data,
	}

	if header.GD3Offset != 0 {
		if header.GD3Offset >= len(data) {
			return nil, fmt.Errorf("%w: GD3 offset $%X is beyond file size", gd3.ErrMalformed, header.GD3Offset)
		}
		f.Metadata, err = gd3.Parse(data[header.GD3Offset:])
		if err != nil {
			return nil, fmt.Errorf("parsing GD3 metadata: %w", err)
		}
	}

	return f, nil
}

// Commands returns a new decoder for the command stream of the file.
func (f *File) Commands() *Decoder {
	return NewDecoder(f.data, f.Header)
}
