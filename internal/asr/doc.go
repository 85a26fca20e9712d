// Package asr defines the speech-recognition capability contract and the
// catalog of supported model variants. Recognizers decode one speech region
// per stream; streams are single-use and must always be closed.
package asr
