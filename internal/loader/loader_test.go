package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2gbs/internal/detector"
	"github.com/retroenv/vgm2gbs/internal/vgm/vgmtest"
)

func newLoader(t *testing.T) *Loader {
	t.Helper()
	return New(detector.New(log.NewTestLogger(t)))
}

func createTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	vgmData := vgmtest.New().Write(0x10, 0x80).Bytes()

	t.Run("load VGM file", func(t *testing.T) {
		path := createTempFile(t, "song.vgm", vgmData)
		data, err := newLoader(t).Load(path)
		assert.NoError(t, err)
		assert.Equal(t, vgmData, data)
	})

	t.Run("load VGZ file", func(t *testing.T) {
		path := createTempFile(t, "song.vgz", compress(t, vgmData))
		data, err := newLoader(t).Load(path)
		assert.NoError(t, err)
		assert.Equal(t, vgmData, data)
	})

	t.Run("load compressed file with VGM extension", func(t *testing.T) {
		path := createTempFile(t, "song.vgm", compress(t, vgmData))
		data, err := newLoader(t).Load(path)
		assert.NoError(t, err)
		assert.Equal(t, vgmData, data)
	})

	t.Run("error on corrupt VGZ file", func(t *testing.T) {
		compressed := compress(t, vgmData)
		path := createTempFile(t, "song.vgz", compressed[:len(compressed)/2])
		_, err := newLoader(t).Load(path)
		assert.Error(t, err)
	})

	t.Run("error on non-existent file", func(t *testing.T) {
		_, err := newLoader(t).Load("/nonexistent/song.vgm")
		assert.Error(t, err)
	})
}

func TestLoadTemplate(t *testing.T) {
	template := []byte{0x01, 0x02, 0x03}
	path := createTempFile(t, "patch_rom.bin", template)

	data, err := newLoader(t).LoadTemplate(path)
	assert.NoError(t, err)
	assert.Equal(t, template, data)

	_, err = newLoader(t).LoadTemplate("/nonexistent/patch_rom.bin")
	assert.ErrorContains(t, err, "reading template ROM")
}
