package gbs

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultEngineRate is the engine rate in Hz that uses the vertical
	// blank interrupt instead of the timer.
	DefaultEngineRate = 60

	tacVBlank   = 0x00
	tacTimer    = 0x04 // timer enabled, 4096 Hz input clock
	timerClock  = 4096
	timerPeriod = 0xFF
)

var (
	// ErrInvalidEngineRate is returned for engine rates that are not positive.
	ErrInvalidEngineRate = errors.New("invalid engine rate")
	// ErrTimerOutOfRange is returned when the TMA value does not fit a byte.
	ErrTimerOutOfRange = errors.New("timer modulo out of range")
)

// Timer contains the values of the timer modulo (TMA) and timer
// control (TAC) registers that set the engine tick rate.
type Timer struct {
	TMA uint8
	TAC uint8
}

// NewTimer calculates the timer register values for the engine rate in Hz.
// The TMA offset is added to the calculated modulo to allow fine tuning of
// songs with custom timing.
func NewTimer(engineRate, tmaOffset int) (Timer, error) {
	if engineRate <= 0 {
		return Timer{}, fmt.Errorf("%w: %d", ErrInvalidEngineRate, engineRate)
	}

	tac := tacVBlank
	modulo := 0
	if engineRate != DefaultEngineRate {
		tac = tacTimer
		modulo = timerPeriod - int(math.RoundToEven(float64(timerClock)/float64(engineRate)))
	}

	tma := tmaOffset + modulo
	if tma < 0 || tma > math.MaxUint8 {
		return Timer{}, fmt.Errorf("%w: modulo %d with offset %d results in %d",
			ErrTimerOutOfRange, modulo, tmaOffset, tma)
	}

	return Timer{
		TMA: uint8(tma),
		TAC: uint8(tac),
	}, nil
}
