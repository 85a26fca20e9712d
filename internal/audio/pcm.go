package audio

import "encoding/binary"

// BytesPerSample is the width of one signed 16-bit little-endian PCM sample.
const BytesPerSample = 2

// DecodeSamples converts s16le PCM bytes into normalized float32 samples in
// [-1, 1). A trailing odd byte is ignored; the decode contract delivers
// whole samples, so callers size their chunks in multiples of two.
func DecodeSamples(data []byte) []float32 {
	n := len(data) / BytesPerSample
	if n == 0 {
		return nil
	}
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		raw := int16(binary.LittleEndian.Uint16(data[i*BytesPerSample:]))
		samples[i] = float32(raw) / 32768.0
	}
	return samples
}

// EncodeSamples converts normalized samples back to s16le PCM bytes.
// Used by tests and by detector fixtures; the production path only decodes.
func EncodeSamples(samples []float32) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		v := s * 32768.0
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(int16(v)))
	}
	return out
}

// Seconds converts a sample count at the given rate into seconds.
func Seconds(samples int64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(samples) / float64(sampleRate)
}
