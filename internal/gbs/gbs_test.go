package gbs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/vgm2gbs/internal/encoder"
)

func testTemplate() []byte {
	template := make([]byte, TemplateSize)
	for i := LoadAddress; i < TemplateSize; i++ {
		template[i] = byte(i)
	}
	return template
}

func TestNewTimer(t *testing.T) {
	tests := []struct {
		name      string
		rate      int
		offset    int
		want      Timer
		wantError error
	}{
		{name: "default rate", rate: 60, want: Timer{TMA: 0, TAC: 0}},
		{name: "default rate with offset", rate: 60, offset: 5, want: Timer{TMA: 5, TAC: 0}},
		{name: "50 Hz", rate: 50, want: Timer{TMA: 0xFF - 82, TAC: 4}},
		{name: "64 Hz", rate: 64, want: Timer{TMA: 0xFF - 64, TAC: 4}},
		{name: "64 Hz with negative offset", rate: 64, offset: -3, want: Timer{TMA: 0xFF - 67, TAC: 4}},
		{name: "round half to even", rate: 8192, want: Timer{TMA: 0xFF, TAC: 4}},
		{name: "rate above clock", rate: 5000, want: Timer{TMA: 0xFE, TAC: 4}},
		{name: "zero rate", rate: 0, wantError: ErrInvalidEngineRate},
		{name: "negative rate", rate: -60, wantError: ErrInvalidEngineRate},
		{name: "negative modulo", rate: 60, offset: -1, wantError: ErrTimerOutOfRange},
		{name: "modulo overflow", rate: 50, offset: 100, wantError: ErrTimerOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer, err := NewTimer(tt.rate, tt.offset)
			if tt.wantError != nil {
				assert.True(t, errors.Is(err, tt.wantError))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, timer)
		})
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := NewHeader(Timer{TMA: 0xAD, TAC: 4})
	data, err := h.MarshalBinary()
	assert.NoError(t, err)
	assert.Equal(t, []byte{
		'G', 'B', 'S', 1, 1, 1,
		0xF0, 0x3E, 0xF0, 0x3E, 0x26, 0x3F, 0xFE, 0xFF,
		0xAD, 0x04,
	}, data)

	parsed, err := ParseHeader(data)
	assert.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = ParseHeader([]byte("GBX0123456789abc"))
	assert.True(t, errors.Is(err, ErrInvalidHeader))
}

func TestMetadataFields(t *testing.T) {
	meta := Metadata{
		Title:  "Café Theme",
		Author: "Someone With A Very Long Name That Does Not Fit",
		Game:   "ゲーム",
	}
	data, err := meta.MarshalBinary()
	assert.NoError(t, err)
	assert.Equal(t, MetadataSize, len(data))

	title := append([]byte("Cafe Theme"), make([]byte, MetadataFieldSize-10)...)
	assert.Equal(t, title, data[:MetadataFieldSize])
	assert.Equal(t, []byte("Someone With A Very Long Name Th"), data[MetadataFieldSize:2*MetadataFieldSize])
	game := append([]byte("???"), make([]byte, MetadataFieldSize-3)...)
	assert.Equal(t, game, data[2*MetadataFieldSize:])
}

func TestBuild(t *testing.T) {
	template := testTemplate()
	original := bytes.Clone(template)
	song := &encoder.Song{
		Banks: [][]byte{{0x26, 0x80, 0xA0}, {0x80, 0x3C, 0xC0}},
		Loop:  &encoder.LoopPoint{Bank: 2, Address: 0x4002},
	}
	meta := &Metadata{Title: "Title", Author: "Author", Game: "Game"}

	img, err := Build(template, song, meta, Options{EngineRate: 64, TMAOffset: 1})
	assert.NoError(t, err)
	assert.Equal(t, original, template)

	assert.Equal(t, TemplateSize+3*BankSize, len(img.ROM))
	assert.Equal(t, []byte{0x26, 0x80, 0xA0, 0x00}, img.ROM[0x4000:0x4004])
	assert.Equal(t, []byte{0x80, 0x3C, 0xC0, 0x00}, img.ROM[0x8000:0x8004])
	assert.Equal(t, []byte{0xFF - 63, 0x04, 0x02, 0x40, 0x02, 0x00}, img.ROM[tmaOffset:TemplateSize])
	assert.Equal(t, Timer{TMA: 0xFF - 63, TAC: 4}, img.Header.Timer)
	assert.Equal(t, *meta, img.Metadata)

	data, err := img.MarshalBinary()
	assert.NoError(t, err)
	assert.Equal(t, HeaderSize+MetadataSize+len(img.ROM)-LoadAddress, len(data))

	f, err := ParseFile(data)
	assert.NoError(t, err)
	assert.Equal(t, img.Header, f.Header)
	assert.Equal(t, *meta, f.Metadata)

	timer, err := f.Timer()
	assert.NoError(t, err)
	assert.Equal(t, img.Header.Timer, timer)

	loop, err := f.LoopPoint()
	assert.NoError(t, err)
	assert.Equal(t, *song.Loop, loop)

	bank, err := f.Bank(2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0x3C, 0xC0}, bank[:3])
}

func TestBuildWithoutLoop(t *testing.T) {
	template := testTemplate()
	song := &encoder.Song{Banks: [][]byte{{0x80, 0x3C, 0xD0}}}

	img, err := Build(template, song, nil, DefaultOptions())
	assert.NoError(t, err)

	// loop area keeps the template content
	assert.Equal(t, template[loopAddrOffset:TemplateSize], img.ROM[loopAddrOffset:TemplateSize])
	assert.Equal(t, Timer{}, img.Header.Timer)
	assert.Equal(t, PlaceholderMetadata(), img.Metadata)
}

func TestBuildDeterministic(t *testing.T) {
	song := &encoder.Song{Banks: [][]byte{{0x12, 0x34, 0xD0}}}

	img1, err := Build(testTemplate(), song, nil, DefaultOptions())
	assert.NoError(t, err)
	data1, err := img1.MarshalBinary()
	assert.NoError(t, err)

	img2, err := Build(testTemplate(), song, nil, DefaultOptions())
	assert.NoError(t, err)
	data2, err := img2.MarshalBinary()
	assert.NoError(t, err)

	assert.Equal(t, data1, data2)
}

func TestBuildErrors(t *testing.T) {
	song := &encoder.Song{Banks: [][]byte{{0xD0}}}

	_, err := Build(make([]byte, TemplateSize-1), song, nil, DefaultOptions())
	assert.True(t, errors.Is(err, ErrTemplateInvalid))

	_, err = Build(testTemplate(), song, nil, Options{EngineRate: 0})
	assert.True(t, errors.Is(err, ErrInvalidEngineRate))

	_, err = Build(testTemplate(), song, nil, Options{EngineRate: 60, TMAOffset: 256})
	assert.True(t, errors.Is(err, ErrTimerOutOfRange))
}
