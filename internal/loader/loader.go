// Package loader handles input file loading operations.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/retroenv/vgm2gbs/internal/detector"
)

// Loader handles loading VGM and template ROM files from disk.
type Loader struct {
	detector *detector.Detector
}

// New creates a new file loader.
func New(detector *detector.Detector) *Loader {
	return &Loader{
		detector: detector,
	}
}

// Load reads the VGM file at path. Compressed VGZ files are decompressed.
func (l *Loader) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return l.LoadFromBytes(path, data)
}

// LoadFromBytes returns the uncompressed VGM data of the file content.
// The file name is only used for format detection.
func (l *Loader) LoadFromBytes(filename string, data []byte) ([]byte, error) {
	if l.detector.Detect(filename, data) != detector.VGZ {
		return data, nil
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening compressed file %s: %w", filename, err)
	}
	defer func() { _ = gz.Close() }()

	data, err = io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompressing file %s: %w", filename, err)
	}
	return data, nil
}

// LoadTemplate reads the playback engine template ROM at path.
func (l *Loader) LoadTemplate(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template ROM %s: %w", path, err)
	}
	return data, nil
}
