package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	rec := NewRecorder(f)
	require.NoError(t, rec.Write([]int16{100, -100, 200, -200}))
	require.NoError(t, rec.Write(nil))
	require.NoError(t, rec.Close())
	require.NoError(t, f.Close())
	assert.Equal(t, 2, rec.Frames())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), data[:4])

	dec := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, SampleRate, buf.Format.SampleRate)
	assert.Equal(t, []int{100, -100, 200, -200}, buf.Data)
}
