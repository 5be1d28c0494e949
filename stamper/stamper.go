package stamper

import (
	"fmt"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Stamps maps variable names to substitution values.
type Stamps map[string]interface{}

// Load reads workspace status files and merges them
// into a single stamp map. Each line is "KEY VALUE"
// with the first space as delimiter. Lines without a
// space are silently skipped. Later files override
// earlier ones.
func Load(infoFiles []string) (Stamps, error) {
	const errCtx = "loading stamps"

	stamps := make(Stamps)

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		for _, line := range strings.Split(
			string(content), "\n",
		) {
			parts := strings.SplitN(line, " ", 2)
			if len(parts) == 2 {
				stamps[parts[0]] = parts[1]
			}
		}
	}

	return stamps, nil
}

// FromEnv returns the process environment as stamps,
// so CI-provided variables can feed pin expansion
// without an info file.
func FromEnv() Stamps {
	stamps := make(Stamps)

	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			stamps[parts[0]] = parts[1]
		}
	}

	return stamps
}

// Merge returns a copy of st with other's entries
// overriding entries of the same name.
func (st Stamps) Merge(other Stamps) Stamps {
	merged := make(Stamps, len(st)+len(other))

	for k, v := range st {
		merged[k] = v
	}

	for k, v := range other {
		merged[k] = v
	}

	return merged
}

// Apply substitutes {VAR} placeholders in format.
// Unknown variables are preserved as-is.
func (st Stamps) Apply(format string) string {
	return fasttemplate.ExecuteStringStd(
		format, "{", "}", st,
	)
}
