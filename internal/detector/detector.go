// Package detector handles input format detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// Format is the container format of an input file.
type Format string

// Supported input formats.
const (
	VGM Format = "vgm"
	VGZ Format = "vgz" // gzip compressed VGM
)

func (f Format) String() string {
	return string(f)
}

var gzipMagic = []byte{0x1F, 0x8B}

// Detector handles input format detection from file content and extensions.
type Detector struct {
	logger *log.Logger
}

// New creates a new format detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the input format of the file data. The gzip
// signature of the content takes priority over the file extension, as
// compressed files are commonly distributed with a .vgm extension as well.
func (d *Detector) Detect(filename string, data []byte) Format {
	format := d.detectFromContent(data)
	if format == "" {
		format = d.detectFromFile(filename)
	}

	d.logger.Debug("Auto-detected format",
		log.Stringer("format", format),
		log.String("file", filename))
	return format
}

func (d *Detector) detectFromContent(data []byte) Format {
	switch {
	case len(data) >= len(gzipMagic) && data[0] == gzipMagic[0] && data[1] == gzipMagic[1]:
		return VGZ
	case len(data) >= 4 && string(data[:4]) == "Vgm ":
		return VGM
	default:
		return ""
	}
}

// detectFromFile determines the format based on file extension.
func (d *Detector) detectFromFile(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".vgz", ".gz":
		return VGZ
	default:
		return VGM
	}
}
