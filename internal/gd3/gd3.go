// Package gd3 decodes the GD3 metadata block that is appended to VGM files.
package gd3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

const (
	headerSize = 12
	fieldCount = 11
)

var magic = []byte("Gd3 ")

// ErrMalformed is returned for GD3 blocks that can not be decoded.
var ErrMalformed = errors.New("malformed GD3 metadata")

// Tag contains the text fields of a GD3 block. Fields with an Orig suffix
// hold the original language variant, the others the english one.
type Tag struct {
	Version uint32

	TrackName      string
	TrackNameOrig  string
	GameName       string
	GameNameOrig   string
	SystemName     string
	SystemNameOrig string
	Author         string
	AuthorOrig     string
	ReleaseDate    string
	Ripper         string
	Notes          string
}

// Parse decodes a GD3 block starting at the beginning of data.
func Parse(data []byte) (*Tag, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic) {
		return nil, fmt.Errorf("%w: missing GD3 identifier", ErrMalformed)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	length := binary.LittleEndian.Uint32(data[8:12])
	if uint64(length) > uint64(len(data)-headerSize) {
		return nil, fmt.Errorf("%w: data length %d exceeds block size %d",
			ErrMalformed, length, len(data)-headerSize)
	}

	fields, err := decodeFields(data[headerSize : headerSize+int(length)])
	if err != nil {
		return nil, err
	}

	return &Tag{
		Version:        version,
		TrackName:      fields[0],
		TrackNameOrig:  fields[1],
		GameName:       fields[2],
		GameNameOrig:   fields[3],
		SystemName:     fields[4],
		SystemNameOrig: fields[5],
		Author:         fields[6],
		AuthorOrig:     fields[7],
		ReleaseDate:    fields[8],
		Ripper:         fields[9],
		Notes:          fields[10],
	}, nil
}

// TrackInfo returns a one line summary of the track.
func (t *Tag) TrackInfo() string {
	return fmt.Sprintf("%s - %s - %s (%s)", t.TrackName, t.Author, t.GameName, t.Ripper)
}

// decodeFields splits the UTF-16LE string table into its null terminated
// fields and converts them to UTF-8.
func decodeFields(raw []byte) ([]string, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: odd UTF-16 data length %d", ErrMalformed, len(raw))
	}
	if err := checkSurrogates(raw); err != nil {
		return nil, err
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	text, err := decoder.Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding UTF-16 text: %w", ErrMalformed, err)
	}

	parts := bytes.Split(text, []byte{0})
	if len(parts) < fieldCount {
		return nil, fmt.Errorf("%w: found %d of %d fields", ErrMalformed, len(parts), fieldCount)
	}

	fields := make([]string, fieldCount)
	for i := range fields {
		fields[i] = string(parts[i])
	}
	return fields, nil
}

// checkSurrogates rejects unpaired UTF-16 surrogates, which the decoder
// would otherwise silently replace.
func checkSurrogates(raw []byte) error {
	for i := 0; i < len(raw); i += 2 {
		unit := binary.LittleEndian.Uint16(raw[i:])
		switch {
		case unit >= 0xD800 && unit < 0xDC00:
			if i+4 > len(raw) {
				return fmt.Errorf("%w: unpaired surrogate at offset %d", ErrMalformed, i)
			}
			next := binary.LittleEndian.Uint16(raw[i+2:])
			if next < 0xDC00 || next >= 0xE000 {
				return fmt.Errorf("%w: unpaired surrogate at offset %d", ErrMalformed, i)
			}
			i += 2

		case unit >= 0xDC00 && unit < 0xE000:
			return fmt.Errorf("%w: unpaired surrogate at offset %d", ErrMalformed, i)
		}
	}
	return nil
}
