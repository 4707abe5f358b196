package encoder

// Engine bytecode commands.
const (
	cmdWait     = 0x80
	cmdNextBank = 0xA0
	cmdLoop     = 0xC0
	cmdEndSong  = 0xD0
)

const (
	// BankSize is the maximum number of bytes of a song bank, excluding the
	// byte of its terminating command.
	BankSize = 0x3FFF

	// BankWindow is the address that switchable ROM banks are mapped to.
	BankWindow = 0x4000

	// maxCommandSize is the worst case size of a single encoded command.
	maxCommandSize = 4
)

// bankWriter collects encoded commands into song banks. Only the last bank
// is open for writing, all previous banks are sealed.
type bankWriter struct {
	sealed [][]byte
	open   []byte
}

func newBankWriter() *bankWriter {
	return &bankWriter{
		open: make([]byte, 0, BankSize+1),
	}
}

// reserve seals the open bank with a next bank command if a worst case
// command would not fit anymore.
func (w *bankWriter) reserve() {
	if len(w.open)+maxCommandSize > BankSize {
		w.seal(cmdNextBank)
	}
}

func (w *bankWriter) write(data ...byte) {
	w.open = append(w.open, data...)
}

// seal terminates the open bank with the given command and opens a new bank.
func (w *bankWriter) seal(terminator byte) {
	w.open = append(w.open, terminator)
	w.sealed = append(w.sealed, w.open)
	w.open = make([]byte, 0, BankSize+1)
}

// position returns the bank number and mapped address of the next byte that
// will be written. Song banks are numbered starting at 1 as bank 0 contains
// the playback engine.
func (w *bankWriter) position() LoopPoint {
	return LoopPoint{
		Bank:    uint16(1 + len(w.sealed)),
		Address: uint16(BankWindow + len(w.open)),
	}
}

// finish terminates the last bank and returns all banks.
func (w *bankWriter) finish(terminator byte) [][]byte {
	w.seal(terminator)
	return w.sealed
}
