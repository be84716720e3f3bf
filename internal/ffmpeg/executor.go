package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// ExecResult holds the outcome of a single external tool invocation.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int  // -1 when the process never started or died from a signal.
	Spawned  bool // false when the binary could not be started at all.
	Err      error
}

// Success reports whether the process ran and exited with status 0.
func (r ExecResult) Success() bool {
	return r.Spawned && r.Err == nil && r.ExitCode == 0
}

// Runner is the capability to spawn the external tool. Run blocks until the
// process exits and its stderr has been fully drained.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ExecResult
}

// ExecRunner runs real processes. When Tee is set, stderr is copied to it in
// real time while still being captured.
type ExecRunner struct {
	Tee io.Writer
}

// Run starts name with args and waits for it. Both output streams are
// captured; only stderr is teed.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ExecResult {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if r.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, r.Tee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Start(); err != nil {
		return ExecResult{ExitCode: -1, Err: err}
	}

	err := cmd.Wait()
	res := ExecResult{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: -1,
		Spawned:  true,
		Err:      err,
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	return res
}
