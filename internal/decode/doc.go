// Package decode manages the external ffmpeg processes that turn arbitrary
// media containers into the 16 kHz mono s16le stream the recognizer
// consumes. Processes run in their own process group so teardown reaches
// any children ffmpeg spawns.
package decode
