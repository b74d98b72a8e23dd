package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/fatih/color"

	"github.com/iishyfishyy/llmcmd/internal/logging"
)

// Result is what a finished command produced
type Result struct {
	Command string
	// Output is stdout and stderr interleaved as the command wrote them
	Output   string
	ExitCode int
}

// Failed reports whether the command exited non-zero or could not start
func (r Result) Failed() bool {
	return r.ExitCode != 0
}

// Executor runs commands through a shell and reports what they printed
type Executor struct {
	shell string
	out   io.Writer
	log   *logging.Logger
}

// New creates an executor. An empty shell means /bin/sh (cmd on Windows);
// a nil writer means stdout.
func New(shell string, out io.Writer, log *logging.Logger) *Executor {
	if shell == "" {
		shell = "/bin/sh"
		if runtime.GOOS == "windows" {
			shell = "cmd"
		}
	}
	if out == nil {
		out = os.Stdout
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Executor{shell: shell, out: out, log: log.WithComponent("executor")}
}

func (e *Executor) shellArgs(command string) []string {
	if runtime.GOOS == "windows" && e.shell == "cmd" {
		return []string{"/C", command}
	}
	return []string{"-c", command}
}

// Run executes command, prints its combined output on success or a failure
// message with the exit status otherwise. It never returns an error.
func (e *Executor) Run(ctx context.Context, command string) Result {
	e.log.WithFields(map[string]interface{}{"shell": e.shell, "command": command}).Debug("executing")

	cmd := exec.CommandContext(ctx, e.shell, e.shellArgs(command)...)
	cmd.Stdin = os.Stdin
	output, err := cmd.CombinedOutput()

	result := Result{Command: command, Output: string(output)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			result.Output += err.Error()
		}
		e.log.WithField("exit_code", result.ExitCode).Debug("command failed")
		color.New(color.FgRed).Fprintln(e.out, FailureMessage(result))
		return result
	}

	e.log.Debug("command completed successfully")
	fmt.Fprintln(e.out, result.Output)
	return result
}

// FailureMessage formats a failed result for the user
func FailureMessage(r Result) string {
	return fmt.Sprintf("Command failed with error (exit status %d): %s", r.ExitCode, r.Output)
}
