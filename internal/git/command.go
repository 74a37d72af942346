package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// CommandError is returned when the git binary exits unsuccessfully. Its
// text carries whatever git printed so callers can surface it verbatim.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	output := e.Output()
	if output == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Output joins stderr and stdout, trimmed. Merge conflicts are reported on
// stdout, most other failures on stderr.
func (e *CommandError) Output() string {
	parts := make([]string, 0, 2) //nolint:mnd //stderr+stdout
	if s := strings.TrimSpace(e.Stderr); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}

// run executes a read-only git command inside the configured working tree
// and returns stdout. It is bounded by ctx and the configured timeout.
func (s *Service) run(ctx context.Context, args ...string) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	return s.execute(ctx, args...)
}

// mutate executes a git command that changes the repository. It ignores
// cancellation and the timeout so git is never killed halfway through.
func (s *Service) mutate(ctx context.Context, args ...string) (string, error) {
	return s.execute(context.WithoutCancel(ctx), args...)
}

func (s *Service) execute(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", s.config.Path}, args...)
	cmd := exec.CommandContext(ctx, s.config.binary(), full...)
	cmd.Env = append(os.Environ(),
		"LC_ALL=C",
		"GIT_TERMINAL_PROMPT=0",
		"GIT_EDITOR=true",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug("running git command", zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Args:     args,
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.String(), cmdErr
	}

	return stdout.String(), nil
}

// lines splits command output into non-empty trimmed lines.
func lines(output string) []string {
	var result []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		result = append(result, line)
	}
	return result
}
