package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Command is an external program invocation.
//
// Interactive commands inherit the terminal instead of having their output captured.
type Command struct {
	Name        string
	Args        []string
	Interactive bool
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// CommandResult holds the captured output of a [Command].
type CommandResult struct {
	Stdout []byte
	Stderr []byte
}

// CommandRunner executes external programs.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*CommandResult, error)
}

// ExecRunner implements [CommandRunner] with [exec.CommandContext].
type ExecRunner struct {
	logger *log.Logger
}

// NewExecRunner creates an ExecRunner that logs each invocation at debug level.
func NewExecRunner(logger *log.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run executes cmd and returns its captured output. A non-zero exit is returned as an error
// alongside whatever output was captured.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*CommandResult, error) {
	if r.logger != nil {
		r.logger.Debug("running command", "cmd", c.String())
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)

	var stdout, stderr bytes.Buffer
	if c.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	result := &CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		return result, fmt.Errorf("%s: %w", c.Name, err)
	}
	return result, nil
}

// tail returns the last n non-empty lines of b.
func tail(b []byte, n int) string {
	var lines []string
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
