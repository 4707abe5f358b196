package encoder

import (
	"errors"
	"io"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/vgm2gbs/internal/vgm"
)

// sliceSource returns events from a slice, followed by an optional error.
type sliceSource struct {
	events []vgm.Event
	err    error
	read   int
}

func (s *sliceSource) Next() (vgm.Event, error) {
	if s.read < len(s.events) {
		s.read++
		return s.events[s.read-1], nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, io.EOF
}

func source(events ...vgm.Event) *sliceSource {
	return &sliceSource{events: events}
}

func writes(n int) []vgm.Event {
	events := make([]vgm.Event, n)
	for i := range events {
		events[i] = vgm.RegisterWrite{Address: 0xFF10 + uint16(i%0x30), Value: byte(i)}
	}
	return events
}

func TestEncodeSingleBank(t *testing.T) {
	// largest count of writes that passes the headroom check of every write
	n := (BankSize-maxCommandSize)/2 + 1
	events := writes(n)

	song, err := Encode(source(events...))
	assert.NoError(t, err)
	assert.Nil(t, song.Loop)
	assert.Equal(t, 1, len(song.Banks))

	bank := song.Banks[0]
	assert.Equal(t, 2*n+1, len(bank))
	for i, event := range events {
		write := event.(vgm.RegisterWrite)
		assert.Equal(t, byte(write.Address), bank[2*i])
		assert.Equal(t, write.Value, bank[2*i+1])
	}
	assert.Equal(t, byte(cmdEndSong), bank[len(bank)-1])
}

func TestEncodeBankSwitch(t *testing.T) {
	events := writes(BankSize)

	song, err := Encode(source(events...))
	assert.NoError(t, err)
	assert.True(t, len(song.Banks) > 1)

	total := 0
	for i, bank := range song.Banks {
		content := bank[:len(bank)-1]
		assert.True(t, len(content) <= BankSize)
		assert.Equal(t, 0, len(content)%2)
		total += len(content) / 2

		terminator := bank[len(bank)-1]
		if i < len(song.Banks)-1 {
			assert.Equal(t, byte(cmdNextBank), terminator)
			// the bank is sealed when a worst case command does not fit anymore
			assert.True(t, len(content)+maxCommandSize > BankSize)
		} else {
			assert.Equal(t, byte(cmdEndSong), terminator)
		}
	}
	assert.Equal(t, len(events), total)

	// the first write of the second bank is the one that did not fit
	firstSecond := events[(len(song.Banks[0])-1)/2].(vgm.RegisterWrite)
	assert.Equal(t, byte(firstSecond.Address), song.Banks[1][0])
	assert.Equal(t, firstSecond.Value, song.Banks[1][1])
}

func TestEncodeWait(t *testing.T) {
	tests := []struct {
		samples uint32
		want    []byte
	}{
		{samples: 0, want: []byte{0x80, 0x00}},
		{samples: 1, want: []byte{0x80, 0x00}},
		{samples: 735, want: []byte{0x80, 0x01}},
		{samples: 882, want: []byte{0x80, 0x01}},
		{samples: 44100, want: []byte{0x80, 0x3C}},
		{samples: 65535, want: []byte{0x80, 0x59}},
		{samples: 255 * 735, want: []byte{0x80, 0xFF}},
		{samples: 256 * 735, want: []byte{0x80, 0xFF, 0x80, 0x01}},
		{samples: 5 * 44100, want: []byte{0x80, 0xFF, 0x80, 0x2D}},
		{samples: 510 * 735, want: []byte{0x80, 0xFF, 0x80, 0xFF}},
	}

	for _, tt := range tests {
		song, err := Encode(source(vgm.Wait{Samples: tt.samples}))
		assert.NoError(t, err)
		assert.Equal(t, 1, len(song.Banks))
		assert.Equal(t, append(tt.want, cmdEndSong), song.Banks[0])
	}
}

func TestWaitFrames(t *testing.T) {
	assert.Equal(t, uint64(1), WaitFrames(735))
	assert.Equal(t, uint64(1), WaitFrames(882))
	assert.Equal(t, uint64(60), WaitFrames(44100))
	assert.Equal(t, uint64(0), WaitFrames(367))
	assert.Equal(t, uint64(1), WaitFrames(368))
}

func TestEncodeLoop(t *testing.T) {
	events := []vgm.Event{
		vgm.RegisterWrite{Address: 0xFF26, Value: 0x80},
		vgm.Wait{Samples: 735},
		vgm.LoopMarker{},
		vgm.RegisterWrite{Address: 0xFF12, Value: 0xF0},
		vgm.LoopMarker{},
		vgm.Wait{Samples: 735},
	}

	song, err := Encode(source(events...))
	assert.NoError(t, err)
	assert.NotNil(t, song.Loop)
	assert.Equal(t, LoopPoint{Bank: 1, Address: 0x4004}, *song.Loop)
	assert.Equal(t, []byte{0x26, 0x80, 0x80, 0x01, 0x12, 0xF0, 0x80, 0x01, cmdLoop}, song.Banks[0])
}

func TestEncodeLoopInLaterBank(t *testing.T) {
	events := writes(BankSize)
	events = append(events, vgm.LoopMarker{}, vgm.Wait{Samples: 735})

	song, err := Encode(source(events...))
	assert.NoError(t, err)
	assert.NotNil(t, song.Loop)

	sealed := len(song.Banks) - 1
	last := song.Banks[sealed]
	assert.Equal(t, uint16(sealed+1), song.Loop.Bank)
	assert.Equal(t, uint16(BankWindow+len(last)-3), song.Loop.Address)
	assert.Equal(t, byte(cmdLoop), last[len(last)-1])
}

func TestEncodeLoopSealsFullBank(t *testing.T) {
	// a loop marker is checked against the bank headroom like every event
	n := (BankSize - maxCommandSize + 1) / 2
	events := append(writes(n), vgm.LoopMarker{})

	song, err := Encode(source(events...))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(song.Banks))
	assert.Equal(t, LoopPoint{Bank: 2, Address: BankWindow}, *song.Loop)
	assert.Equal(t, []byte{cmdLoop}, song.Banks[1])
	assert.Equal(t, byte(cmdNextBank), song.Banks[0][len(song.Banks[0])-1])
}

func TestEncodeEmpty(t *testing.T) {
	song, err := Encode(source())
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{{cmdEndSong}}, song.Banks)
	assert.Nil(t, song.Loop)
}

func TestEncodeDataBlock(t *testing.T) {
	events := []vgm.Event{
		vgm.RegisterWrite{Address: 0xFF26, Value: 0x80},
		vgm.DataBlock{Type: 0x07, Payload: []byte{1, 2, 3}},
		vgm.Wait{Samples: 735},
	}

	song, err := Encode(source(events...))
	assert.Nil(t, song)
	assert.True(t, errors.Is(err, ErrDataBlockUnsupported))
}

func TestEncodeSourceError(t *testing.T) {
	errTest := errors.New("test error")
	src := &sliceSource{events: writes(1), err: errTest}

	_, err := Encode(src)
	assert.True(t, errors.Is(err, errTest))
}
