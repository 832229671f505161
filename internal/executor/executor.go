// Package executor runs a single non-interactive Claude CLI invocation
// with stream-json output, one per loop iteration.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Config holds the final resolved configuration for executing Claude CLI.
// All values should be resolved before creating the executor.
type Config struct {
	SystemPrompt   string // appended to system prompt; empty means none
	Prompt         string // user prompt to send
	Model          string // empty means use default
	AllowedTools   string // empty means no restriction
	PermissionMode string // empty defaults to "acceptEdits"
	OutputFormat   string // empty defaults to "stream-json"
	WorkDir        string // working directory; empty means inherit
	BaseURL        string // overrides ANTHROPIC_BASE_URL, e.g. the local proxy
	Binary         string // CLI binary; empty defaults to "claude"
}

// Executor executes the Claude CLI
type Executor struct {
	config Config
	stdout io.Writer
	stderr io.Writer
}

// New creates a new Executor
func New(config Config, stdout, stderr io.Writer) *Executor {
	return &Executor{
		config: config,
		stdout: stdout,
		stderr: stderr,
	}
}

// Execute runs the Claude CLI
func (e *Executor) Execute(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, e.binary(), e.buildArgs()...)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	cmd.Dir = e.config.WorkDir
	if e.config.BaseURL != "" {
		cmd.Env = append(os.Environ(), "ANTHROPIC_BASE_URL="+e.config.BaseURL)
	}
	return cmd.Run()
}

// buildArgs constructs the command-line arguments for the Claude CLI
func (e *Executor) buildArgs() []string {
	args := []string{
		"-p",
		"--verbose",
		"--output-format", e.outputFormat(),
		"--permission-mode", e.permissionMode(),
	}

	if e.config.Model != "" {
		args = append(args, "--model", e.config.Model)
	}

	if e.config.AllowedTools != "" {
		args = append(args, "--allowed-tools", e.config.AllowedTools)
	}

	if e.config.SystemPrompt != "" {
		args = append(args, "--append-system-prompt", e.config.SystemPrompt)
	}

	if e.config.Prompt != "" {
		args = append(args, e.config.Prompt)
	}

	return args
}

func (e *Executor) binary() string {
	if e.config.Binary != "" {
		return e.config.Binary
	}
	return "claude"
}

func (e *Executor) outputFormat() string {
	if e.config.OutputFormat != "" {
		return e.config.OutputFormat
	}
	return "stream-json"
}

func (e *Executor) permissionMode() string {
	if e.config.PermissionMode != "" {
		return e.config.PermissionMode
	}
	return "acceptEdits"
}

// GetCommand returns the command string that would be executed (for dry-run)
func (e *Executor) GetCommand() string {
	args := e.buildArgs()
	quoted := make([]string, len(args))
	for i, arg := range args {
		if strings.Contains(arg, " ") || strings.Contains(arg, "\n") {
			quoted[i] = fmt.Sprintf("%q", arg)
		} else {
			quoted[i] = arg
		}
	}
	return e.binary() + " " + strings.Join(quoted, " ")
}
