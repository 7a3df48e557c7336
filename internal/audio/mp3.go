package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MPEG-1/2 Layer III audio via go-mp3, which always
// yields 16-bit stereo PCM; it is down-mixed to mono here.
type MP3Decoder struct{}

// Decode implements Decoder.
func (MP3Decoder) Decode(path string) (string, Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", Signal{}, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return "", Signal{}, fmt.Errorf("audio: decode %s: %w", path, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return "", Signal{}, fmt.Errorf("audio: read %s: %w", path, err)
	}

	const channels = 2
	samples := len(raw) / 2 // 16-bit little-endian samples
	interleaved := make([]float64, samples)
	for i := 0; i < samples; i++ {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		interleaved[i] = float64(v) / 32768.0
	}

	mono := downmix(interleaved, channels)

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return title, Signal{Samples: mono, SampleRate: dec.SampleRate()}, nil
}
