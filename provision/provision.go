package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/byte4ever/repo_provision/fetch"
)

// markerDir is the metadata directory a git checkout
// carries at its root. Its presence alone marks the
// target as provisioned.
const markerDir = ".git"

// Sentinel errors for the two failure classes. Wrap
// sites add context; callers test with errors.Is.
var (
	// ErrRemoval reports that replacing stale
	// content at the target path failed.
	ErrRemoval = errors.New(
		"removing stale target content",
	)

	// ErrFetch reports that the remote fetch did not
	// complete.
	ErrFetch = errors.New(
		"fetching pinned reference",
	)
)

// Actions recorded in a Report.
const (
	// ActionFetched means a fresh checkout was
	// fetched into the target path.
	ActionFetched = "fetched"

	// ActionSkipped means the marker was present and
	// nothing was done.
	ActionSkipped = "skipped"
)

// Config holds the settings for one provisioning run.
type Config struct {
	// Path is the target directory.
	Path string

	// RepositoryURL is the pinned remote URL.
	RepositoryURL string

	// Reference is the pinned tag or branch name.
	Reference string

	// Depth limits fetch history; zero means the
	// default shallow depth of 1.
	Depth int

	// Fetcher retrieves the checkout. Required.
	Fetcher fetch.Fetcher
}

// Report describes what a Provision call did.
type Report struct {
	Path       string `json:"path"`
	Repository string `json:"repository"`
	Reference  string `json:"reference"`
	Action     string `json:"action"`
	Commit     string `json:"commit,omitempty"`
}

// IsProvisioned reports whether path carries the
// checkout marker directory at its top level.
//
// This is a presence check only: an existing checkout
// is never validated against the pinned URL or
// reference, and never refreshed. Reviewed trade-off:
// the fast path trusts the caller to clear the
// directory when the pin changes.
func IsProvisioned(path string) bool {
	fi, err := os.Stat(
		filepath.Join(path, markerDir),
	)

	return err == nil && fi.IsDir()
}

// Provision guarantees that cfg.Path contains a git
// checkout after it returns: either the path already
// carried one, or it now holds a freshly fetched
// shallow checkout of the pinned reference.
//
// The fetch goes into a temporary sibling directory
// which replaces cfg.Path only on full success, so a
// failed fetch never disturbs existing content at the
// target. An exclusive file lock on "<path>.lock"
// serialises concurrent calls against the same target.
//
// When the marker check fails, any pre-existing
// content at cfg.Path is removed without confirmation.
// This is the operation's only destructive behavior.
func Provision(
	ctx context.Context,
	cfg Config,
) (Report, error) {
	const errCtx = "provisioning repository"

	rep := Report{
		Path:       cfg.Path,
		Repository: cfg.RepositoryURL,
		Reference:  cfg.Reference,
	}

	if err := validate(cfg); err != nil {
		return rep, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	if IsProvisioned(cfg.Path) {
		slog.Info(
			"target already provisioned",
			"path", cfg.Path,
		)

		rep.Action = ActionSkipped

		return rep, nil
	}

	parent := filepath.Dir(cfg.Path)

	if err := os.MkdirAll(parent, 0o750); err != nil {
		return rep, fmt.Errorf(
			"%s: %w: %w", errCtx, ErrRemoval, err,
		)
	}

	lk := flock.New(
		filepath.Clean(cfg.Path) + ".lock",
	)

	if err := lk.Lock(); err != nil {
		return rep, fmt.Errorf(
			"%s: acquire lock: %w", errCtx, err,
		)
	}

	defer func() {
		if unlockErr := lk.Unlock(); unlockErr != nil {
			slog.Error(
				"failed to release provision lock",
				"error", unlockErr,
			)
		}
	}()

	// Another process may have provisioned the
	// target while we waited for the lock.
	if IsProvisioned(cfg.Path) {
		slog.Info(
			"target provisioned by concurrent run",
			"path", cfg.Path,
		)

		rep.Action = ActionSkipped

		return rep, nil
	}

	tmp, err := os.MkdirTemp(
		parent, ".provision-*",
	)
	if err != nil {
		return rep, fmt.Errorf(
			"%s: %w: %w", errCtx, ErrFetch, err,
		)
	}

	defer func() {
		// Gone already after a successful rename.
		if rmErr := os.RemoveAll(tmp); rmErr != nil {
			slog.Error(
				"failed to remove staging dir",
				"path", tmp,
				"error", rmErr,
			)
		}
	}()

	slog.Info(
		"fetching pinned reference",
		"repository", cfg.RepositoryURL,
		"reference", cfg.Reference,
		"path", cfg.Path,
	)

	commit, err := cfg.Fetcher.Fetch(
		ctx,
		fetch.Request{
			URL:       cfg.RepositoryURL,
			Reference: cfg.Reference,
			Depth:     cfg.Depth,
			Dir:       tmp,
		},
	)
	if err != nil {
		return rep, fmt.Errorf(
			"%s: %w: %w", errCtx, ErrFetch, err,
		)
	}

	// Replace the target only after the fetch fully
	// succeeded.
	if err := os.RemoveAll(cfg.Path); err != nil {
		return rep, fmt.Errorf(
			"%s: %w: %w", errCtx, ErrRemoval, err,
		)
	}

	if err := os.Rename(tmp, cfg.Path); err != nil {
		return rep, fmt.Errorf(
			"%s: %w: %w", errCtx, ErrRemoval, err,
		)
	}

	rep.Action = ActionFetched
	rep.Commit = commit

	return rep, nil
}

// validate checks cfg before any filesystem activity.
func validate(cfg Config) error {
	const errCtx = "validating config"

	if cfg.Path == "" {
		return fmt.Errorf(
			"%s: path must be set", errCtx,
		)
	}

	if cfg.RepositoryURL == "" {
		return fmt.Errorf(
			"%s: repository url must be set",
			errCtx,
		)
	}

	if cfg.Reference == "" {
		return fmt.Errorf(
			"%s: reference must be set", errCtx,
		)
	}

	if cfg.Depth < 0 {
		return fmt.Errorf(
			"%s: depth must not be negative",
			errCtx,
		)
	}

	if cfg.Fetcher == nil {
		return fmt.Errorf(
			"%s: fetcher must be set", errCtx,
		)
	}

	return nil
}
