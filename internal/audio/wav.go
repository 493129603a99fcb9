package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNotWAV is returned when the input does not carry a RIFF/WAVE header.
var ErrNotWAV = errors.New("not a valid WAV file")

// wavFormatPCM is the WAVE format tag for integer PCM.
const wavFormatPCM = 1

// Metadata describes the source a Buffer was decoded from.
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
}

// ReadWAVFile decodes a WAV file into a mono Buffer.
func ReadWAVFile(path string) (Buffer, *Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	buf, meta, err := DecodeWAV(f)
	if err != nil {
		return Buffer{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, meta, nil
}

// DecodeWAV decodes integer PCM WAV data. Multi-channel input is averaged
// down to a single channel.
func DecodeWAV(r io.ReadSeeker) (Buffer, *Metadata, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return Buffer{}, nil, ErrNotWAV
	}
	if d.WavAudioFormat != wavFormatPCM {
		return Buffer{}, nil, fmt.Errorf("unsupported WAV format tag %d (integer PCM only)", d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return Buffer{}, nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	channels := pcm.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	bitDepth := int(d.BitDepth)
	frames := len(pcm.Data) / channels

	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			v, err := normaliseInt(pcm.Data[i*channels+c], bitDepth)
			if err != nil {
				return Buffer{}, nil, err
			}
			sum += v
		}
		samples[i] = sum / float64(channels)
	}

	buf, err := NewBuffer(samples, pcm.Format.SampleRate)
	if err != nil {
		return Buffer{}, nil, err
	}

	return buf, &Metadata{
		Duration:   buf.Duration().Seconds(),
		SampleRate: pcm.Format.SampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
	}, nil
}

// WriteWAVFile stores a Buffer as 16-bit mono PCM.
func WriteWAVFile(path string, buf Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	if err := EncodeWAV(f, buf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeWAV writes a Buffer as 16-bit mono PCM.
func EncodeWAV(w io.WriteSeeker, buf Buffer) error {
	enc := wav.NewEncoder(w, buf.SampleRate(), 16, 1, wavFormatPCM)

	data := make([]int, buf.Len())
	for i, s := range buf.View() {
		data[i] = int(toInt16(s))
	}
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate()},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalise WAV file: %w", err)
	}
	return nil
}
