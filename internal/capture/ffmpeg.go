// Package capture records the microphone and plays reference audio through
// external ffmpeg-family processes.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/linuxmatters/mictune/internal/audio"
	"github.com/linuxmatters/mictune/internal/metrics"
)

// LevelInterval is how often the live level is reported while recording.
const LevelInterval = 250 * time.Millisecond

// killGrace is how long a process gets to exit after an interrupt.
const killGrace = 1200 * time.Millisecond

// LevelFunc receives the RMS level in dBFS of the most recent window.
type LevelFunc func(dbfs float64)

// Config selects the ffmpeg input.
type Config struct {
	FFmpeg      string
	InputFormat string
	InputDevice string
	SampleRate  int
}

// Recorder captures mono PCM from an input device with ffmpeg.
type Recorder struct {
	cfg Config
}

// NewRecorder fills unset fields with defaults.
func NewRecorder(cfg Config) *Recorder {
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	return &Recorder{cfg: cfg}
}

func (r *Recorder) args(d time.Duration) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", r.cfg.InputFormat,
		"-i", r.cfg.InputDevice,
		"-t", strconv.FormatFloat(d.Seconds(), 'f', 3, 64),
		"-ac", "1",
		"-ar", strconv.Itoa(r.cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

// Record captures d of audio. onLevel, when set, is called from the
// calling goroutine every LevelInterval of captured audio. Cancelling ctx
// interrupts ffmpeg and returns the context error.
func (r *Recorder) Record(ctx context.Context, d time.Duration, onLevel LevelFunc) (audio.Buffer, error) {
	if d <= 0 {
		return audio.Buffer{}, fmt.Errorf("record duration must be positive, got %s", d)
	}

	cmd := exec.Command(r.cfg.FFmpeg, r.args(d)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	slog.Debug("recording started", "component", "capture", "device", r.cfg.InputDevice, "duration", d)

	exited := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			interrupt(cmd.Process, exited)
		case <-exited:
		}
	}()

	samples, readErr := readPCM(stdout, r.cfg.SampleRate, onLevel)
	waitErr := cmd.Wait()
	close(exited)

	if ctx.Err() != nil {
		return audio.Buffer{}, ctx.Err()
	}
	if readErr != nil {
		return audio.Buffer{}, fmt.Errorf("failed to read ffmpeg output: %w", readErr)
	}
	if waitErr != nil {
		return audio.Buffer{}, fmt.Errorf("ffmpeg failed: %w: %s", waitErr, trimSpace(stderr.String()))
	}
	if len(samples) == 0 {
		return audio.Buffer{}, fmt.Errorf("ffmpeg produced no audio: %s", trimSpace(stderr.String()))
	}
	slog.Debug("recording finished", "component", "capture", "samples", len(samples))
	return audio.NewBuffer(samples, r.cfg.SampleRate)
}

// readPCM decodes s16le samples until EOF, reporting the level of each
// LevelInterval window.
func readPCM(r io.Reader, sampleRate int, onLevel LevelFunc) ([]float64, error) {
	window := int(float64(sampleRate) * LevelInterval.Seconds())
	if window < 1 {
		window = 1
	}
	buf := make([]byte, window*audio.BytesPerSample16)

	var samples []float64
	for {
		n, err := io.ReadFull(r, buf)
		if n >= audio.BytesPerSample16 {
			chunk := audio.DecodeS16LE(buf[:n-n%audio.BytesPerSample16])
			samples = append(samples, chunk...)
			if onLevel != nil {
				onLevel(metrics.LevelDBFS(chunk))
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return samples, nil
		}
		if err != nil {
			return samples, err
		}
	}
}

// interrupt asks the process to stop, killing it if it has not exited
// within killGrace.
func interrupt(p *os.Process, exited <-chan struct{}) {
	if p == nil {
		return
	}
	_ = p.Signal(os.Interrupt)
	select {
	case <-exited:
	case <-time.After(killGrace):
		_ = p.Kill()
	}
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimSpace(input string) string {
	return string(bytes.TrimSpace([]byte(input)))
}
