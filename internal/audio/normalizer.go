// Package audio converts arbitrary uploaded audio payloads into a
// canonical WAV form that the recognizer accepts. Browser recordings
// usually arrive as webm/opus, but a direct WAV upload must not pay the
// conversion cost, so decoding is an explicit two-step strategy: probe
// the bytes as WAV first, convert with ffmpeg second.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/go-audio/wav"
)

// ErrUnsupported is returned when the payload can neither be read as a
// waveform nor converted into one (corrupt or empty payload).
var ErrUnsupported = errors.New("audio: unsupported or undecodable audio payload")

// Canonical output format for converted audio.
const (
	canonicalSampleRate = 44100
	conversionTimeout   = 20 * time.Second
)

// Source tags how the canonical form was obtained.
type Source int

const (
	// DecodedDirect means the payload was already a valid waveform.
	DecodedDirect Source = iota
	// Converted means the payload was re-encoded via ffmpeg.
	Converted
)

// Normalized is a handle to canonical audio on disk. Cleanup removes all
// temporary files and must be called on every exit path.
type Normalized struct {
	Path       string
	SampleRate int
	Source     Source

	temps []string
}

// Cleanup deletes the temporary files behind the handle. Idempotent.
func (n *Normalized) Cleanup() {
	for _, p := range n.temps {
		_ = os.Remove(p)
	}
	n.temps = nil
}

// Normalizer turns raw encoded audio bytes into canonical WAV files.
type Normalizer struct {
	FFmpegPath string
	// Dir is where temp files are created; "" means os.TempDir().
	Dir string
}

func NewNormalizer(ffmpegPath string) *Normalizer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Normalizer{FFmpegPath: ffmpegPath}
}

// Normalize attempts to interpret raw directly as a playback-ready
// waveform and falls back to an ffmpeg re-encode into 16-bit 44.1kHz
// mono WAV. It fails with ErrUnsupported when both paths fail.
func (z *Normalizer) Normalize(ctx context.Context, raw []byte) (*Normalized, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUnsupported)
	}

	rawFile, err := os.CreateTemp(z.Dir, "user_input_raw_*")
	if err != nil {
		return nil, fmt.Errorf("audio: create temp file: %w", err)
	}
	rawPath := rawFile.Name()
	if _, err := rawFile.Write(raw); err != nil {
		rawFile.Close()
		_ = os.Remove(rawPath)
		return nil, fmt.Errorf("audio: write temp file: %w", err)
	}
	if err := rawFile.Close(); err != nil {
		_ = os.Remove(rawPath)
		return nil, fmt.Errorf("audio: close temp file: %w", err)
	}

	// Step 1: direct decode. Only 16-bit mono PCM may skip conversion;
	// anything else (stereo, 24-bit, float) must go through ffmpeg so the
	// recognizer always sees the encoding the file header declares.
	d := wav.NewDecoder(bytes.NewReader(raw))
	if d.IsValidFile() && d.WavAudioFormat == 1 && d.BitDepth == 16 && d.NumChans == 1 {
		return &Normalized{
			Path:       rawPath,
			SampleRate: int(d.SampleRate),
			Source:     DecodedDirect,
			temps:      []string{rawPath},
		}, nil
	}

	// Step 2: convert.
	wavPath := rawPath + ".wav"
	if err := z.convert(ctx, rawPath, wavPath); err != nil {
		_ = os.Remove(rawPath)
		_ = os.Remove(wavPath)
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return &Normalized{
		Path:       wavPath,
		SampleRate: canonicalSampleRate,
		Source:     Converted,
		temps:      []string{rawPath, wavPath},
	}, nil
}

func (z *Normalizer) convert(ctx context.Context, inPath, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, conversionTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, z.FFmpegPath,
		"-y",
		"-i", inPath,
		"-ar", fmt.Sprintf("%d", canonicalSampleRate),
		"-ac", "1",
		"-sample_fmt", "s16",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg convert: %v (%s)", err, tail(out, 200))
	}

	// Verify the converted file really is a decodable waveform.
	f, err := os.Open(outPath)
	if err != nil {
		return fmt.Errorf("open converted file: %v", err)
	}
	defer f.Close()
	if !wav.NewDecoder(f).IsValidFile() {
		return fmt.Errorf("converted file is not a valid waveform")
	}
	return nil
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
