package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// BytesPerSample16 is the frame size of signed 16-bit mono PCM.
const BytesPerSample16 = 2

// DecodeS16LE converts little-endian signed 16-bit mono PCM into samples
// normalised to [-1.0, 1.0]. A trailing odd byte is ignored.
func DecodeS16LE(raw []byte) []float64 {
	n := len(raw) / BytesPerSample16
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = float64(v) / 32768.0
	}
	return out
}

// EncodeS16LE converts normalised samples to little-endian signed 16-bit PCM.
// Samples outside [-1.0, 1.0] are clamped.
func EncodeS16LE(samples []float64) []byte {
	out := make([]byte, len(samples)*BytesPerSample16)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(toInt16(s)))
	}
	return out
}

func toInt16(s float64) int16 {
	if s > 1.0 {
		s = 1.0
	} else if s < -1.0 {
		s = -1.0
	}
	return int16(math.Round(s * math.MaxInt16))
}

// normaliseInt scales an integer PCM value of the given bit depth to [-1.0, 1.0].
func normaliseInt(v int, bitDepth int) (float64, error) {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		return float64(v-128) / 128.0, nil
	case 16:
		return float64(v) / 32768.0, nil
	case 24:
		return float64(v) / 8388608.0, nil
	case 32:
		return float64(v) / 2147483648.0, nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
}
