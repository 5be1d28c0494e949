// Package exec provides shell command execution helpers.
package exec

import (
	"context"
	"fmt"
	"log/slog"
	oe "os/exec"
	"strings"
)

// Run executes the named command in the given directory
// and returns combined stdout+stderr output. Pass empty
// dir to use the current working directory. On failure
// the command's own output is carried in the returned
// error unmodified, so the underlying tool's diagnostics
// reach the caller.
func Run(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Info(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
	)

	cmd := oe.CommandContext(ctx, name, arg...)
	if dir != "" {
		cmd.Dir = dir
	}

	by, err := cmd.CombinedOutput()

	slog.Debug("output", "result", string(by))

	if err != nil {
		return string(by), fmt.Errorf(
			"%s: %s %s: %w: %s",
			errCtx, name, strings.Join(arg, " "),
			err, strings.TrimSpace(string(by)),
		)
	}

	return string(by), nil
}
