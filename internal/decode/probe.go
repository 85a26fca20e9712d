package decode

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"substream/internal/services"
)

// runProbe is swapped out by tests.
var runProbe = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output()
}

// Duration asks ffprobe for the container duration in seconds. A zero
// duration with nil error means the container does not report one (live
// streams, some raw formats); progress reporting degrades to elapsed-only.
func Duration(ctx context.Context, binary, source string) (float64, error) {
	if binary == "" {
		binary = "ffprobe"
	}
	out, err := runProbe(ctx, binary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "decode", "probe duration",
			"ffprobe failed", err)
	}
	text := strings.TrimSpace(string(out))
	if text == "" || text == "N/A" {
		return 0, nil
	}
	seconds, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "decode", "probe duration",
			"unparseable duration "+text, err)
	}
	return seconds, nil
}
