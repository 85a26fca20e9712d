package decode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"substream/internal/services"
)

// Options controls the decode invocation.
type Options struct {
	Binary     string
	SampleRate int
}

func (o Options) withDefaults() Options {
	if o.Binary == "" {
		o.Binary = "ffmpeg"
	}
	if o.SampleRate <= 0 {
		o.SampleRate = 16000
	}
	return o
}

// buildArgs assembles the ffmpeg command line for raw PCM extraction to
// stdout.
func buildArgs(source string, sampleRate int) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	}
}

// Process is one running decode. Stdout carries the PCM stream; stderr is
// buffered for diagnostics when the tool fails.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer

	waitOnce sync.Once
	waitErr  error
}

// Start launches ffmpeg for the source file. The process gets its own
// process group so Stop can signal the whole tree.
func Start(ctx context.Context, source string, opts Options) (*Process, error) {
	opts = opts.withDefaults()
	cmd := exec.CommandContext(ctx, opts.Binary, buildArgs(source, opts.SampleRate)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "decode", "start ffmpeg",
			"open stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "decode", "start ffmpeg",
			fmt.Sprintf("launch %s", opts.Binary), err)
	}
	return &Process{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

// Stdout is the raw PCM stream.
func (p *Process) Stdout() io.Reader { return p.stdout }

// reap collects the exit status exactly once; Wait and Stop share it so
// the child never lingers as a zombie.
func (p *Process) reap() error {
	p.waitOnce.Do(func() { p.waitErr = p.cmd.Wait() })
	return p.waitErr
}

// Wait blocks until the process exits and maps a non-zero exit to an
// external-tool error carrying the captured stderr.
func (p *Process) Wait() error {
	err := p.reap()
	if err == nil {
		return nil
	}
	detail := strings.TrimSpace(p.stderr.String())
	if detail == "" {
		detail = err.Error()
	}
	return services.Wrap(services.ErrExternalTool, "decode", "ffmpeg",
		truncate(detail, 512), err)
}

// Stop tears the process down and reaps it: SIGTERM to the process group,
// then SIGKILL if it has not exited within the grace period. Returns only
// after the exit status has been collected. Safe after Wait.
func (p *Process) Stop(grace time.Duration) {
	if p.cmd.Process == nil {
		return
	}
	if p.cmd.ProcessState == nil {
		pgid := p.cmd.Process.Pid
		_ = unix.Kill(-pgid, unix.SIGTERM)

		done := make(chan struct{})
		go func() {
			p.reap()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(grace):
			_ = unix.Kill(-pgid, unix.SIGKILL)
			<-done
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
