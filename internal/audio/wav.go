package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder decodes PCM WAV files via go-audio/wav, down-mixing
// multi-channel audio to mono.
type WAVDecoder struct{}

// Decode implements Decoder. The title is the filename without its
// extension, a stable identifier across repeated builds.
func (WAVDecoder) Decode(path string) (string, Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", Signal{}, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return "", Signal{}, fmt.Errorf("audio: %s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return "", Signal{}, fmt.Errorf("audio: decode %s: %w", path, err)
	}

	// AsFloatBuffer keeps the raw integer sample values; scale them
	// by the source bit depth into [-1, 1].
	fb := buf.AsFloatBuffer()
	if buf.SourceBitDepth > 1 {
		scale := float64(int64(1) << (buf.SourceBitDepth - 1))
		for i := range fb.Data {
			fb.Data[i] /= scale
		}
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return title, signalFromBuffer(fb), nil
}

// signalFromBuffer down-mixes a decoded PCM buffer to a mono Signal.
func signalFromBuffer(buf *gaudio.FloatBuffer) Signal {
	mono := downmix(buf.Data, buf.Format.NumChannels)
	return Signal{Samples: mono, SampleRate: buf.Format.SampleRate}
}
