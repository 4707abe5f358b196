package gbs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/retroenv/vgm2gbs/internal/encoder"
)

// File is a parsed GBS file.
type File struct {
	Header   Header
	Metadata Metadata
	Payload  []byte // ROM data starting at the load address
}

// ParseFile parses a GBS file.
func ParseFile(data []byte) (*File, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) < HeaderSize+MetadataSize {
		return nil, fmt.Errorf("%w: size %d is too small for metadata", ErrInvalidHeader, len(data))
	}

	meta := data[HeaderSize : HeaderSize+MetadataSize]
	return &File{
		Header: header,
		Metadata: Metadata{
			Title:  metadataString(meta[:MetadataFieldSize]),
			Author: metadataString(meta[MetadataFieldSize : 2*MetadataFieldSize]),
			Game:   metadataString(meta[2*MetadataFieldSize:]),
		},
		Payload: data[HeaderSize+MetadataSize:],
	}, nil
}

// ROM returns length bytes of the payload at the given ROM address.
func (f *File) ROM(address, length int) ([]byte, error) {
	start := address - int(f.Header.LoadAddress)
	if start < 0 || start+length > len(f.Payload) {
		return nil, fmt.Errorf("ROM address $%X with length $%X is outside of the payload", address, length)
	}
	return f.Payload[start : start+length], nil
}

// Timer returns the timer values that are patched into the ROM.
func (f *File) Timer() (Timer, error) {
	data, err := f.ROM(tmaOffset, 2)
	if err != nil {
		return Timer{}, err
	}
	return Timer{TMA: data[0], TAC: data[1]}, nil
}

// LoopPoint returns the loop point that is patched into the ROM.
func (f *File) LoopPoint() (encoder.LoopPoint, error) {
	data, err := f.ROM(loopAddrOffset, 4)
	if err != nil {
		return encoder.LoopPoint{}, err
	}
	return encoder.LoopPoint{
		Address: binary.LittleEndian.Uint16(data[0:]),
		Bank:    binary.LittleEndian.Uint16(data[2:]),
	}, nil
}

// Bank returns the ROM bank with the given number. Bank 0 contains the
// engine, song data starts at bank 1.
func (f *File) Bank(number int) ([]byte, error) {
	return f.ROM(number*BankSize, BankSize)
}

func metadataString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
