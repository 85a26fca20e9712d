// Package audio provides the fixed-capacity circular sample buffer that sits
// between the decode process and the voice-activity windowing loop, plus
// s16le PCM to normalized float conversion.
package audio
