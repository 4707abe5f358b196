// Package gbs builds GBS images from encoded songs and a playback engine
// template ROM.
package gbs

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/vgm2gbs/internal/encoder"
)

const (
	// TemplateSize is the minimum size of the engine template ROM. It fills
	// ROM bank 0, song banks are placed after it.
	TemplateSize = 0x4000
	// BankSize is the size of a ROM bank.
	BankSize = 0x4000

	// offsets in the template ROM that are patched
	tmaOffset      = 0x3FFA
	tacOffset      = 0x3FFB
	loopAddrOffset = 0x3FFC
	loopBankOffset = 0x3FFE
)

// ErrTemplateInvalid is returned for template ROMs that are too small.
var ErrTemplateInvalid = errors.New("invalid template ROM")

// Options controls the image generation.
type Options struct {
	EngineRate int // engine tick rate in Hz
	TMAOffset  int // added to the calculated timer modulo
}

// DefaultOptions returns the options for a 60 Hz engine rate.
func DefaultOptions() Options {
	return Options{
		EngineRate: DefaultEngineRate,
	}
}

// Image is a generated GBS image.
type Image struct {
	Header   Header
	Metadata Metadata
	ROM      []byte // patched template ROM including the song banks
}

// Build patches the song into a copy of the template ROM and returns the
// image. The template is not modified. A nil meta uses placeholder metadata.
func Build(template []byte, song *encoder.Song, meta *Metadata, opts Options) (*Image, error) {
	if len(template) < TemplateSize {
		return nil, fmt.Errorf("%w: size $%X is smaller than $%X", ErrTemplateInvalid, len(template), TemplateSize)
	}

	timer, err := NewTimer(opts.EngineRate, opts.TMAOffset)
	if err != nil {
		return nil, fmt.Errorf("calculating timer: %w", err)
	}

	rom := make([]byte, len(template), len(template)+(len(song.Banks)+1)*BankSize)
	copy(rom, template)
	rom = append(rom, make([]byte, (len(song.Banks)+1)*BankSize)...)

	for i, bank := range song.Banks {
		copy(rom[BankSize*(i+1):], bank)
	}

	if song.Loop != nil {
		binary.LittleEndian.PutUint16(rom[loopAddrOffset:], song.Loop.Address)
		binary.LittleEndian.PutUint16(rom[loopBankOffset:], song.Loop.Bank)
	}
	rom[tmaOffset] = timer.TMA
	rom[tacOffset] = timer.TAC

	img := &Image{
		Header: NewHeader(Timer{
			TMA: rom[tmaOffset],
			TAC: rom[tacOffset],
		}),
		Metadata: PlaceholderMetadata(),
		ROM:      rom,
	}
	if meta != nil {
		img.Metadata = *meta
	}
	return img, nil
}

// Payload returns the part of the ROM that is stored in the GBS file,
// starting at the load address.
func (img *Image) Payload() []byte {
	return img.ROM[img.Header.LoadAddress:]
}

// MarshalBinary encodes the image as GBS file.
func (img *Image) MarshalBinary() ([]byte, error) {
	header, err := img.Header.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	meta, err := img.Metadata.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}

	payload := img.Payload()
	data := make([]byte, 0, len(header)+len(meta)+len(payload))
	data = append(data, header...)
	data = append(data, meta...)
	data = append(data, payload...)
	return data, nil
}
