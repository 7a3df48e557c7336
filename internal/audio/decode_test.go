package audio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"audioid/internal/audio"
)

func TestByExtension_DispatchesKnownFormats(t *testing.T) {
	assert.IsType(t, audio.WAVDecoder{}, audio.ByExtension("song.wav"))
	assert.IsType(t, audio.WAVDecoder{}, audio.ByExtension("SONG.WAV"))
	assert.IsType(t, audio.MP3Decoder{}, audio.ByExtension("song.mp3"))
}

func TestByExtension_FallsBackToFFmpegForUnknownFormats(t *testing.T) {
	assert.IsType(t, audio.FFmpegDecoder{}, audio.ByExtension("song.flac"))
	assert.IsType(t, audio.FFmpegDecoder{}, audio.ByExtension("song"))
}

func TestSignal_Duration(t *testing.T) {
	s := audio.Signal{Samples: make([]float64, 44100), SampleRate: 44100}
	assert.Equal(t, 1.0, s.Duration())

	zero := audio.Signal{Samples: make([]float64, 100), SampleRate: 0}
	assert.Equal(t, 0.0, zero.Duration())
}
