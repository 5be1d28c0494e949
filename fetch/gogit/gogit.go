// Package gogit fetches pinned references in-process
// with the go-git library, avoiding any dependency on
// an installed git binary for the clone itself.
package gogit

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/byte4ever/repo_provision/fetch"
)

// Fetcher clones with go-git.
//
// Pattern: Strategy -- implements fetch.Fetcher.
type Fetcher struct{}

// New returns a ready-to-use Fetcher.
func New() *Fetcher {
	return &Fetcher{}
}

// Fetch clones req.Reference from req.URL into req.Dir
// and returns the resulting HEAD commit SHA. The
// reference is tried as a tag first, then as a branch,
// matching git clone --branch semantics.
func (f *Fetcher) Fetch(
	ctx context.Context,
	req fetch.Request,
) (string, error) {
	const errCtx = "fetching with go-git"

	refNames := []plumbing.ReferenceName{
		plumbing.NewTagReferenceName(req.Reference),
		plumbing.NewBranchReferenceName(req.Reference),
	}

	var lastErr error

	for _, rn := range refNames {
		repo, err := git.PlainCloneContext(
			ctx, req.Dir, false,
			&git.CloneOptions{
				URL:           req.URL,
				ReferenceName: rn,
				SingleBranch:  true,
				Depth:         req.HistoryDepth(),
			},
		)
		if err != nil {
			lastErr = err

			// A failed clone may leave partial
			// content behind; reset the
			// destination before the next attempt.
			if rmErr := os.RemoveAll(
				req.Dir,
			); rmErr != nil {
				return "", fmt.Errorf(
					"%s: reset destination: %w",
					errCtx, rmErr,
				)
			}

			continue
		}

		head, err := repo.Head()
		if err != nil {
			return "", fmt.Errorf(
				"%s: resolve head: %w",
				errCtx, err,
			)
		}

		return head.Hash().String(), nil
	}

	return "", fmt.Errorf(
		"%s: reference %q: %w",
		errCtx, req.Reference, lastErr,
	)
}
