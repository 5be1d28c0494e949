// Command provision_repo ensures a target directory
// contains a shallow checkout of a pinned git
// reference. When the directory already carries a git
// checkout it exits without touching it; otherwise the
// directory is replaced by a fresh shallow,
// single-branch fetch of the pinned reference. It is
// meant to run as a dependency-bootstrap step before a
// build or test run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/repo_provision/fetch"
	"github.com/byte4ever/repo_provision/fetch/gitcli"
	"github.com/byte4ever/repo_provision/fetch/gogit"
	"github.com/byte4ever/repo_provision/pin"
	"github.com/byte4ever/repo_provision/provision"
	"github.com/byte4ever/repo_provision/stamper"
)

// sliceFlag implements flag.Value for multi-value
// string flags (repeated --flag=val usage).
type sliceFlag []string

// String returns the flag value as a comma-separated
// string representation.
func (s *sliceFlag) String() string {
	if s == nil {
		return ""
	}

	return strings.Join(*s, ",")
}

// Set appends a value to the slice.
func (s *sliceFlag) Set(val string) error {
	*s = append(*s, val)

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	const errCtx = "running provision_repo"

	// Pin flags. Explicit flags override pin file
	// fields.
	repository := flag.String(
		"repository", "",
		"Remote git repository URL",
	)
	reference := flag.String(
		"reference", "",
		"Pinned tag or branch name",
	)
	depth := flag.Int(
		"depth", 0,
		"Fetch history depth (0 means 1)",
	)
	pinFile := flag.String(
		"pin_file", "",
		"YAML pin file with repository, "+
			"reference, and depth",
	)

	var stampInfoFiles sliceFlag

	flag.Var(
		&stampInfoFiles,
		"stamp_info_file",
		"Workspace status file for {VAR} "+
			"expansion (repeatable)",
	)

	// Fetcher selection.
	fetcherName := flag.String(
		"fetcher", "gitcli",
		"Fetch implementation: gitcli or gogit",
	)
	gitCmd := flag.String(
		"git_cmd", "git",
		"Git binary name or path (gitcli fetcher)",
	)

	jsonOut := flag.Bool(
		"json", false,
		"Print a JSON report on success",
	)

	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf(
			"%s: expected exactly one target "+
				"directory argument, got %d",
			errCtx, flag.NArg(),
		)
	}

	target := flag.Arg(0)

	pn, err := resolvePin(pinFlags{
		pinFile:        *pinFile,
		repository:     *repository,
		reference:      *reference,
		depth:          *depth,
		stampInfoFiles: stampInfoFiles,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	fr, err := newFetcher(*fetcherName, *gitCmd)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	rep, err := provision.Provision(
		context.Background(),
		provision.Config{
			Path:          target,
			RepositoryURL: pn.Repository,
			Reference:     pn.Reference,
			Depth:         pn.Depth,
			Fetcher:       fr,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if *jsonOut {
		by, err := json.Marshal(rep)
		if err != nil {
			return fmt.Errorf(
				"%s: encode report: %w",
				errCtx, err,
			)
		}

		fmt.Println(string(by))
	}

	return nil
}

// pinFlags bundles the pin-related flag values.
type pinFlags struct {
	pinFile        string
	repository     string
	reference      string
	depth          int
	stampInfoFiles []string
}

// resolvePin merges the pin file (if any) with explicit
// flag overrides and applies stamp expansion. Stamp
// files override process environment variables of the
// same name.
func resolvePin(pf pinFlags) (pin.Pin, error) {
	const errCtx = "resolving pin"

	var pn pin.Pin

	if pf.pinFile != "" {
		loaded, err := pin.Load(pf.pinFile)
		if err != nil {
			return pin.Pin{}, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		pn = loaded
	}

	if pf.repository != "" {
		pn.Repository = pf.repository
	}

	if pf.reference != "" {
		pn.Reference = pf.reference
	}

	if pf.depth != 0 {
		pn.Depth = pf.depth
	}

	stamps, err := stamper.Load(pf.stampInfoFiles)
	if err != nil {
		return pin.Pin{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	pn = pn.Expand(stamper.FromEnv().Merge(stamps))

	if err := pn.Validate(); err != nil {
		return pin.Pin{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return pn, nil
}

// newFetcher creates a fetch.Fetcher based on the
// implementation name. Pattern: Factory -- selects the
// fetch transport at runtime.
func newFetcher(
	name string,
	gitCmd string,
) (fetch.Fetcher, error) {
	const errCtx = "creating fetcher"

	switch name {
	case "gitcli":
		return gitcli.New(gitCmd), nil

	case "gogit":
		return gogit.New(), nil

	default:
		return nil, fmt.Errorf(
			"%s: unknown fetcher %q", errCtx, name,
		)
	}
}
