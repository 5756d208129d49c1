package audio

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes mixer output to a 16 bit stereo WAV stream.
type Recorder struct {
	enc    *wav.Encoder
	buf    *goaudio.IntBuffer
	frames int
}

// NewRecorder starts a WAV stream on w. Close must be called to finalize
// the header.
func NewRecorder(w io.WriteSeeker) *Recorder {
	return &Recorder{
		enc: wav.NewEncoder(w, SampleRate, 16, 2, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: SampleRate},
			SourceBitDepth: 16,
		},
	}
}

// Write appends interleaved stereo samples as returned by APU.Samples.
func (r *Recorder) Write(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		r.buf.Data = append(r.buf.Data, int(s))
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("recording audio: %w", err)
	}
	r.frames += len(samples) / 2
	return nil
}

// Frames is the number of stereo frames written so far.
func (r *Recorder) Frames() int {
	return r.frames
}

func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}
