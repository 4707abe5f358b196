// Package options contains the program options.
package options

// Defaults of the program options.
const (
	DefaultEngineRate = 60
	DefaultTemplate   = "patch_rom.bin"
)

// Parameters contains file path options.
type Parameters struct {
	Input    string
	Output   string
	Template string `env:"VGM2GBS_ROM"` // playback engine template ROM
	Config   string
	Batch    string
}

// Conversion contains the options that control the generated image.
type Conversion struct {
	EngineRate int `env:"VGM2GBS_RATE"`       // engine tick rate in Hz
	TMAOffset  int `env:"VGM2GBS_TMA_OFFSET"` // added to the calculated timer modulo
}

// Flags contains behavior options.
type Flags struct {
	Verify bool
	Debug  bool
	Quiet  bool
}

// Program options of the converter.
type Program struct {
	Parameters
	Conversion
	Flags
}

// NewProgram returns a new options instance with default options.
func NewProgram() Program {
	return Program{
		Parameters: Parameters{
			Template: DefaultTemplate,
		},
		Conversion: Conversion{
			EngineRate: DefaultEngineRate,
		},
	}
}
