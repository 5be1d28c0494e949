package fetch

import "context"

// Pattern: Strategy -- swap fetch transport without
// changing the provisioning decision.

// DefaultDepth is the history depth used when a Request
// does not set one. Depth 1 keeps only the most recent
// commit of the pinned reference.
const DefaultDepth = 1

// Request describes a single shallow fetch: one
// reference from one repository into one directory.
type Request struct {
	// URL is the remote repository URL.
	URL string

	// Reference is the tag or branch to fetch.
	Reference string

	// Depth limits history depth; zero or negative
	// means DefaultDepth.
	Depth int

	// Dir is the destination directory. It may exist
	// empty or not exist at all.
	Dir string
}

// HistoryDepth returns the effective fetch depth.
func (r Request) HistoryDepth() int {
	if r.Depth <= 0 {
		return DefaultDepth
	}

	return r.Depth
}

// Fetcher retrieves a shallow, single-branch checkout
// of a pinned reference and returns the resulting HEAD
// commit SHA.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		req Request,
	) (string, error)
}

// FetcherFunc adapts a plain function to the Fetcher
// interface.
type FetcherFunc func(
	ctx context.Context,
	req Request,
) (string, error)

// Fetch delegates to the wrapped function.
func (f FetcherFunc) Fetch(
	ctx context.Context,
	req Request,
) (string, error) {
	return f(ctx, req)
}
