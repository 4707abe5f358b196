// Package vgm parses VGM sound logs and decodes their command stream into
// Game Boy APU events.
package vgm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MinVersion is the oldest VGM version that carries the Game Boy DMG clock.
	MinVersion = 0x161

	headerSize        = 0x40
	defaultDataOffset = 0x40

	eofPointer    = 0x04
	versionOffset = 0x08
	gd3Pointer    = 0x14
	samplesOffset = 0x18
	loopPointer   = 0x1C
	loopSamples   = 0x20
	dataPointer   = 0x34
	dmgClock      = 0x80
)

var magic = []byte("Vgm ")

// ErrHeaderInvalid is returned for files with a bad identifier or an
// unsupported version.
var ErrHeaderInvalid = errors.New("invalid VGM header")

// Header contains the VGM header fields used for the conversion. All offsets
// are absolute file offsets.
type Header struct {
	Version      uint32
	EOFOffset    int
	GD3Offset    int // 0 if the file has no GD3 block
	TotalSamples uint32
	LoopOffset   int // 0 if the song does not loop
	LoopSamples  uint32
	DataOffset   int
	DMGClock     uint32 // 0 if the header is too short to contain it
}

// ParseHeader parses and validates the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: file size %d is smaller than header", ErrHeaderInvalid, len(data))
	}
	if !bytes.Equal(data[:4], magic) {
		return Header{}, fmt.Errorf("%w: missing VGM identifier", ErrHeaderInvalid)
	}

	h := Header{
		Version:      binary.LittleEndian.Uint32(data[versionOffset:]),
		TotalSamples: binary.LittleEndian.Uint32(data[samplesOffset:]),
		LoopSamples:  binary.LittleEndian.Uint32(data[loopSamples:]),
	}
	if h.Version < MinVersion {
		return Header{}, fmt.Errorf("%w: version %s is older than %s",
			ErrHeaderInvalid, versionString(h.Version), versionString(MinVersion))
	}

	h.EOFOffset = relativeOffset(data, eofPointer)
	if h.EOFOffset == 0 || h.EOFOffset > len(data) {
		h.EOFOffset = len(data)
	}
	h.GD3Offset = relativeOffset(data, gd3Pointer)
	h.LoopOffset = relativeOffset(data, loopPointer)
	h.DataOffset = relativeOffset(data, dataPointer)
	if h.DataOffset == 0 {
		h.DataOffset = defaultDataOffset
	}
	if len(data) >= dmgClock+4 && h.DataOffset >= dmgClock+4 {
		h.DMGClock = binary.LittleEndian.Uint32(data[dmgClock:])
	}

	return h, nil
}

// VersionString returns the version in the "1.61" notation.
func (h Header) VersionString() string {
	return versionString(h.Version)
}

// HasLoop returns whether the header defines a loop point.
func (h Header) HasLoop() bool {
	return h.LoopOffset != 0
}

// relativeOffset reads the pointer stored at offset and converts it to an
// absolute offset. A zero pointer means the field is not set and returns 0.
func relativeOffset(data []byte, offset int) int {
	value := binary.LittleEndian.Uint32(data[offset:])
	if value == 0 {
		return 0
	}
	return int(value) + offset
}

func versionString(version uint32) string {
	return fmt.Sprintf("%x.%02x", version>>8, version&0xFF)
}
