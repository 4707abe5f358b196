// Package vgmtest builds VGM files in memory for tests.
package vgmtest

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// HeaderSize is the header size of the built files, commands start directly after it.
const HeaderSize = 0x100

// Builder assembles a VGM file from commands.
type Builder struct {
	Version      uint32
	DMGClock     uint32
	TotalSamples uint32
	LoopSamples  uint32

	commands []byte
	loopAt   int
	gd3      []byte
	noEnd    bool
}

// New returns a builder for a version 1.61 file without commands.
func New() *Builder {
	return &Builder{
		Version:  0x161,
		DMGClock: 4194304,
		loopAt:   -1,
	}
}

// Write adds a Game Boy APU register write of the register at 0xFF10+reg.
func (b *Builder) Write(reg, value byte) *Builder {
	return b.Raw(0xB3, reg, value)
}

// Wait adds a 0x61 wait command.
func (b *Builder) Wait(samples uint16) *Builder {
	return b.Raw(0x61, byte(samples), byte(samples>>8))
}

// Raw adds raw command bytes.
func (b *Builder) Raw(data ...byte) *Builder {
	b.commands = append(b.commands, data...)
	return b
}

// Loop sets the loop point to the next added command.
func (b *Builder) Loop() *Builder {
	b.loopAt = len(b.commands)
	return b
}

// GD3 appends a GD3 block built from the given fields after the commands.
func (b *Builder) GD3(fields ...string) *Builder {
	b.gd3 = GD3Block(fields...)
	return b
}

// NoEnd disables appending the 0x66 end of data command.
func (b *Builder) NoEnd() *Builder {
	b.noEnd = true
	return b
}

// Bytes returns the encoded file.
func (b *Builder) Bytes() []byte {
	data := make([]byte, HeaderSize, HeaderSize+len(b.commands)+1+len(b.gd3))
	copy(data, "Vgm ")
	binary.LittleEndian.PutUint32(data[0x08:], b.Version)
	binary.LittleEndian.PutUint32(data[0x34:], HeaderSize-0x34)
	binary.LittleEndian.PutUint32(data[0x18:], b.TotalSamples)
	binary.LittleEndian.PutUint32(data[0x20:], b.LoopSamples)
	binary.LittleEndian.PutUint32(data[0x80:], b.DMGClock)

	data = append(data, b.commands...)
	if !b.noEnd {
		data = append(data, 0x66)
	}

	if b.loopAt >= 0 {
		binary.LittleEndian.PutUint32(data[0x1C:], uint32(HeaderSize+b.loopAt-0x1C))
	}
	if b.gd3 != nil {
		binary.LittleEndian.PutUint32(data[0x14:], uint32(len(data)-0x14))
		data = append(data, b.gd3...)
	}

	binary.LittleEndian.PutUint32(data[0x04:], uint32(len(data)-0x04))
	return data
}

// GD3Block encodes a GD3 block containing the given fields. Missing fields
// of the 11 field table are filled with empty strings.
func GD3Block(fields ...string) []byte {
	all := make([]string, 11)
	copy(all, fields)

	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	text, err := encoder.String(strings.Join(all, "\x00") + "\x00")
	if err != nil {
		panic(err)
	}

	block := make([]byte, 12, 12+len(text))
	copy(block, "Gd3 ")
	binary.LittleEndian.PutUint32(block[4:], 0x100)
	binary.LittleEndian.PutUint32(block[8:], uint32(len(text)))
	return append(block, text...)
}
