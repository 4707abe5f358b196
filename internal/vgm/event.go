package vgm

import "fmt"

// Event is a single decoded command of the VGM stream. The set of event
// types is closed: RegisterWrite, Wait, LoopMarker and DataBlock.
type Event interface {
	fmt.Stringer

	event()
}

// RegisterWrite writes Value to the APU register at Address.
type RegisterWrite struct {
	Address uint16
	Value   uint8
}

// Wait pauses for a number of samples at the 44100 Hz VGM reference rate.
type Wait struct {
	Samples uint32
}

// LoopMarker marks the position that playback returns to after the end
// of the song.
type LoopMarker struct{}

// DataBlock is an embedded data block. It is decoded to keep the stream
// position intact but can not be converted.
type DataBlock struct {
	Type    uint8
	Payload []byte
}

func (RegisterWrite) event() {}
func (Wait) event()          {}
func (LoopMarker) event()    {}
func (DataBlock) event()     {}

func (e RegisterWrite) String() string {
	return fmt.Sprintf("write $%04X = $%02X", e.Address, e.Value)
}

func (e Wait) String() string {
	return fmt.Sprintf("wait %d samples", e.Samples)
}

func (LoopMarker) String() string {
	return "loop"
}

func (e DataBlock) String() string {
	return fmt.Sprintf("data block type $%02X, %d bytes", e.Type, len(e.Payload))
}
