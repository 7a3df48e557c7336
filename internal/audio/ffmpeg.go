package audio

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegDecoder converts an arbitrary input format to a temporary WAV
// file via the ffmpeg binary, then decodes that with WAVDecoder. It is
// the catch-all adapter for formats with no native Go decoder in the
// pack (FLAC, AAC, OGG, ...).
type FFmpegDecoder struct{}

// Decode implements Decoder.
func (FFmpegDecoder) Decode(path string) (string, Signal, error) {
	if _, err := os.Stat(path); err != nil {
		return "", Signal{}, fmt.Errorf("audio: %s does not exist: %w", path, err)
	}

	tmp, err := os.CreateTemp("", "audioid-*.wav")
	if err != nil {
		return "", Signal{}, fmt.Errorf("audio: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	cmd := exec.Command(
		"ffmpeg",
		"-y",
		"-i", path,
		"-c", "pcm_s16le",
		"-ar", "44100",
		"-ac", "1",
		tmpPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", Signal{}, fmt.Errorf("audio: ffmpeg conversion of %s failed: %w, output: %s", path, err, out)
	}

	_, signal, err := (WAVDecoder{}).Decode(tmpPath)
	if err != nil {
		return "", Signal{}, err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return title, signal, nil
}
