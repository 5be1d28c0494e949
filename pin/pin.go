// Package pin reads the YAML pin file describing the
// single pinned external dependency.
package pin

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/repo_provision/stamper"
)

// Pin is one pinned external dependency. A pin file
// holds exactly one pin; provisioning several
// repositories in one run is out of scope.
type Pin struct {
	// Repository is the remote repository URL.
	Repository string `yaml:"repository"`

	// Reference is the pinned tag or branch name.
	Reference string `yaml:"reference"`

	// Depth limits fetch history; zero means the
	// default shallow depth of 1.
	Depth int `yaml:"depth"`
}

// Load reads and validates a pin file.
func Load(path string) (Pin, error) {
	const errCtx = "loading pin file"

	by, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return Pin{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	var pn Pin

	if err := yaml.Unmarshal(by, &pn); err != nil {
		return Pin{}, fmt.Errorf(
			"%s: decoding yaml: %w", errCtx, err,
		)
	}

	if err := pn.Validate(); err != nil {
		return Pin{}, fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return pn, nil
}

// Validate checks that the required fields are set.
func (p Pin) Validate() error {
	const errCtx = "validating pin"

	if p.Repository == "" {
		return fmt.Errorf(
			"%s: repository must be set", errCtx,
		)
	}

	if p.Reference == "" {
		return fmt.Errorf(
			"%s: reference must be set", errCtx,
		)
	}

	if p.Depth < 0 {
		return fmt.Errorf(
			"%s: depth must not be negative",
			errCtx,
		)
	}

	return nil
}

// Expand applies stamp substitution to the repository
// and reference fields (e.g. "{DEP_GIT_TAG}") and
// returns the expanded pin.
func (p Pin) Expand(st stamper.Stamps) Pin {
	p.Repository = st.Apply(p.Repository)
	p.Reference = st.Apply(p.Reference)

	return p
}
