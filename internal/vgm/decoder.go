package vgm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// VGM command opcodes handled by the decoder.
const (
	cmdWait       = 0x61
	cmdWaitNTSC   = 0x62
	cmdWaitPAL    = 0x63
	cmdEnd        = 0x66
	cmdDataBlock  = 0x67
	cmdWaitShort  = 0x70 // 0x70-0x7F wait 1-16 samples
	cmdWaitLast   = 0x7F
	cmdDMGWrite   = 0xB3
	dmgRegisterIO = 0xFF10

	samplesNTSC = 735
	samplesPAL  = 882
)

// ErrTruncated is returned when a command's operands extend past the end of
// the file.
var ErrTruncated = errors.New("truncated VGM command")

// UnknownCommandError is returned for opcodes that are not supported.
type UnknownCommandError struct {
	Opcode byte
	Offset int
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown VGM command $%02X at offset $%X", e.Opcode, e.Offset)
}

// Decoder reads events from a VGM command stream. It is forward only and
// reads every event exactly once.
type Decoder struct {
	data   []byte
	offset int
	end    int
	loop   int

	loopEmitted bool // loop marker for the current offset was returned
	done        bool
}

// NewDecoder returns a decoder for the command stream described by header.
func NewDecoder(data []byte, header Header) *Decoder {
	end := min(header.EOFOffset, len(data))
	return &Decoder{
		data:   data,
		offset: header.DataOffset,
		end:    end,
		loop:   header.LoopOffset,
	}
}

// Offset returns the file offset of the next command.
func (d *Decoder) Offset() int {
	return d.offset
}

// Next returns the next event of the stream. It returns io.EOF after the
// end of the stream was reached.
func (d *Decoder) Next() (Event, error) {
	if d.done || d.offset >= d.end {
		d.done = true
		return nil, io.EOF
	}

	if d.loop != 0 && d.offset == d.loop && !d.loopEmitted {
		d.loopEmitted = true
		return LoopMarker{}, nil
	}

	event, err := d.decode()
	if err != nil {
		d.done = true
		return nil, err
	}
	d.loopEmitted = false
	return event, nil
}

func (d *Decoder) decode() (Event, error) {
	opcode := d.data[d.offset]

	switch {
	case opcode == cmdWait:
		operands, err := d.operands(2)
		if err != nil {
			return nil, err
		}
		return Wait{Samples: uint32(binary.LittleEndian.Uint16(operands))}, nil

	case opcode == cmdWaitNTSC:
		d.offset++
		return Wait{Samples: samplesNTSC}, nil

	case opcode == cmdWaitPAL:
		d.offset++
		return Wait{Samples: samplesPAL}, nil

	case opcode == cmdEnd:
		d.done = true
		return nil, io.EOF

	case opcode == cmdDataBlock:
		return d.dataBlock()

	case opcode >= cmdWaitShort && opcode <= cmdWaitLast:
		d.offset++
		return Wait{Samples: uint32(opcode&0x0F) + 1}, nil

	case opcode == cmdDMGWrite:
		operands, err := d.operands(2)
		if err != nil {
			return nil, err
		}
		return RegisterWrite{
			Address: dmgRegisterIO + uint16(operands[0]),
			Value:   operands[1],
		}, nil

	default:
		return nil, &UnknownCommandError{Opcode: opcode, Offset: d.offset}
	}
}

// dataBlock decodes a 0x67 0x66 tt ss ss ss ss command and its payload.
func (d *Decoder) dataBlock() (Event, error) {
	start := d.offset
	operands, err := d.operands(6)
	if err != nil {
		return nil, err
	}

	size := binary.LittleEndian.Uint32(operands[2:])
	if uint64(size) > uint64(d.end-d.offset) {
		return nil, fmt.Errorf("%w: data block at offset $%X with size %d", ErrTruncated, start, size)
	}

	payload := d.data[d.offset : d.offset+int(size)]
	d.offset += int(size)
	return DataBlock{Type: operands[1], Payload: payload}, nil
}

// operands returns the n operand bytes following the current opcode and
// advances the offset past the command.
func (d *Decoder) operands(n int) ([]byte, error) {
	start := d.offset + 1
	if start+n > d.end {
		return nil, fmt.Errorf("%w: command $%02X at offset $%X", ErrTruncated, d.data[d.offset], d.offset)
	}
	d.offset = start + n
	return d.data[start : start+n], nil
}
