// Package encoder converts decoded VGM events into the bank switched
// bytecode of the GBS playback engine.
package encoder

import (
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/vgm2gbs/internal/vgm"
)

const (
	// sampleRate is the VGM reference sample rate.
	sampleRate = 44100
	// frameRate is the rate of the engine wait unit.
	frameRate = 60
	// maxWaitFrames is the longest wait a single wait command can encode.
	maxWaitFrames = 0xFF
)

// ErrDataBlockUnsupported is returned when the stream contains a data block.
var ErrDataBlockUnsupported = errors.New("data block conversion is not supported")

// EventSource provides the events to encode in stream order.
// Next returns io.EOF after the last event.
type EventSource interface {
	Next() (vgm.Event, error)
}

// LoopPoint is the position that the engine jumps to at the end of the song.
type LoopPoint struct {
	Bank    uint16 // ROM bank number, song data starts at bank 1
	Address uint16 // address inside the bank window at 0x4000
}

// Song is the encoded engine bytecode.
type Song struct {
	Banks [][]byte
	Loop  *LoopPoint // nil if the song does not loop
}

// Encode reads all events from src and encodes them into song banks.
// Only the first loop marker of the stream sets the loop point.
func Encode(src EventSource) (*Song, error) {
	w := newBankWriter()
	song := &Song{}

	for {
		event, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading event: %w", err)
		}

		w.reserve()

		switch e := event.(type) {
		case vgm.RegisterWrite:
			w.write(byte(e.Address), e.Value)

		case vgm.Wait:
			writeWait(w, e.Samples)

		case vgm.LoopMarker:
			if song.Loop == nil {
				loop := w.position()
				song.Loop = &loop
			}

		case vgm.DataBlock:
			return nil, fmt.Errorf("%w: type $%02X with %d bytes", ErrDataBlockUnsupported, e.Type, len(e.Payload))

		default:
			return nil, fmt.Errorf("unsupported event type %T", event)
		}
	}

	terminator := byte(cmdEndSong)
	if song.Loop != nil {
		terminator = cmdLoop
	}
	song.Banks = w.finish(terminator)
	return song, nil
}

// WaitFrames converts a VGM sample count to engine frames, rounded to the
// nearest frame.
func WaitFrames(samples uint32) uint64 {
	return (2*frameRate*uint64(samples) + sampleRate) / (2 * sampleRate)
}

// writeWait encodes a wait. Waits longer than a single wait command can
// express are split into multiple wait commands.
func writeWait(w *bankWriter, samples uint32) {
	frames := WaitFrames(samples)
	for {
		chunk := min(frames, maxWaitFrames)
		w.write(cmdWait, byte(chunk))
		frames -= chunk
		if frames == 0 {
			return
		}
		w.reserve()
	}
}
