package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external binary and returns its standard output.
// Adapters accept one so tests can replace real subprocesses.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecCommand is the default CommandRunner. A non-zero exit includes the
// trimmed stderr in the returned error.
func ExecCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if detail != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, tail(detail, 2000))
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// tail keeps the last n bytes of long tool output.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
