// Package vad adapts a voice-activity capability into an ordered queue of
// speech regions. The windowing loop feeds fixed-size windows from the
// circular sample buffer into the engine and must run to quiescence after
// every push so the buffer never accumulates more than one window of slack.
package vad
