// Package provision implements the idempotent bootstrap of a pinned
// repository checkout.
//
// Provision inspects a target directory once per invocation: a ".git"
// marker directory at its top level means the target is accepted as
// already provisioned and nothing is done. Otherwise the pinned
// reference is fetched shallowly into a temporary sibling directory
// which atomically replaces the target on full success. Pre-existing
// non-checkout content at the target is destroyed in the process.
//
// The two failure classes are ErrRemoval (replacing stale content
// failed) and ErrFetch (the remote fetch did not complete). Neither is
// retried; both terminate the run.
package provision
