package gbs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the size of the GBS header without the metadata fields.
const HeaderSize = 0x10

// Addresses of the playback engine in the template ROM.
const (
	LoadAddress  = 0x3EF0
	InitAddress  = 0x3EF0
	PlayAddress  = 0x3F26
	StackPointer = 0xFFFE
)

var magic = []byte("GBS")

// ErrInvalidHeader is returned when parsing data that is not a GBS header.
var ErrInvalidHeader = errors.New("invalid GBS header")

// Header is the fixed size GBS file header.
type Header struct {
	Version      uint8
	SongCount    uint8
	FirstSong    uint8
	LoadAddress  uint16
	InitAddress  uint16
	PlayAddress  uint16
	StackPointer uint16
	Timer        Timer
}

// NewHeader returns the header for a single song image using the given timer.
func NewHeader(timer Timer) Header {
	return Header{
		Version:      1,
		SongCount:    1,
		FirstSong:    1,
		LoadAddress:  LoadAddress,
		InitAddress:  InitAddress,
		PlayAddress:  PlayAddress,
		StackPointer: StackPointer,
		Timer:        timer,
	}
}

// MarshalBinary encodes the header.
func (h Header) MarshalBinary() ([]byte, error) {
	data := make([]byte, HeaderSize)
	copy(data, magic)
	data[3] = h.Version
	data[4] = h.SongCount
	data[5] = h.FirstSong
	binary.LittleEndian.PutUint16(data[6:], h.LoadAddress)
	binary.LittleEndian.PutUint16(data[8:], h.InitAddress)
	binary.LittleEndian.PutUint16(data[10:], h.PlayAddress)
	binary.LittleEndian.PutUint16(data[12:], h.StackPointer)
	data[14] = h.Timer.TMA
	data[15] = h.Timer.TAC
	return data, nil
}

// ParseHeader decodes the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: size %d is smaller than header", ErrInvalidHeader, len(data))
	}
	if !bytes.Equal(data[:3], magic) {
		return Header{}, fmt.Errorf("%w: missing GBS identifier", ErrInvalidHeader)
	}

	return Header{
		Version:      data[3],
		SongCount:    data[4],
		FirstSong:    data[5],
		LoadAddress:  binary.LittleEndian.Uint16(data[6:]),
		InitAddress:  binary.LittleEndian.Uint16(data[8:]),
		PlayAddress:  binary.LittleEndian.Uint16(data[10:]),
		StackPointer: binary.LittleEndian.Uint16(data[12:]),
		Timer: Timer{
			TMA: data[14],
			TAC: data[15],
		},
	}, nil
}
