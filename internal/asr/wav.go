package asr

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// writeWAV emits a minimal mono 16-bit PCM RIFF file for the external
// recognizer. Samples clip to the int16 range.
func writeWAV(w io.Writer, sampleRate int, samples []float32) error {
	dataLen := uint32(len(samples) * 2)
	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataLen)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataLen)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}

	buf := make([]byte, 2)
	for _, s := range samples {
		v := int16(math.Max(-32768, math.Min(32767, math.Round(float64(s)*32768))))
		binary.LittleEndian.PutUint16(buf, uint16(v))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write wav data: %w", err)
		}
	}
	return nil
}
