// Package gitcli fetches pinned references by shelling
// out to the git command line client.
package gitcli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/byte4ever/repo_provision/exec"
	"github.com/byte4ever/repo_provision/fetch"
)

// Fetcher runs the git binary to perform shallow
// clones.
//
// Pattern: Strategy -- implements fetch.Fetcher.
type Fetcher struct {
	// GitCmd is the git binary name or path.
	GitCmd string
}

// New returns a Fetcher using the given git binary.
// Pass empty to use "git" from PATH.
func New(gitCmd string) *Fetcher {
	if gitCmd == "" {
		gitCmd = "git"
	}

	return &Fetcher{GitCmd: gitCmd}
}

// Fetch clones req.Reference from req.URL into req.Dir
// with history truncated to req.HistoryDepth commits
// and returns the resulting HEAD commit SHA. The clone
// is single-branch: no other references are retrieved.
func (f *Fetcher) Fetch(
	ctx context.Context,
	req fetch.Request,
) (string, error) {
	const errCtx = "fetching with git cli"

	_, err := exec.Run(
		ctx, "",
		f.GitCmd,
		"clone",
		"--quiet",
		"--depth",
		strconv.Itoa(req.HistoryDepth()),
		"--single-branch",
		"--branch", req.Reference,
		req.URL,
		req.Dir,
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	out, err := exec.Run(
		ctx, req.Dir,
		f.GitCmd, "rev-parse", "HEAD",
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: resolve head: %w", errCtx, err,
		)
	}

	return strings.TrimSpace(out), nil
}
