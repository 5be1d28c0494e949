// Package fetch defines the strategy interface for retrieving a pinned
// git reference into a directory.
//
// The Fetcher interface abstracts the transport. Implementations exist
// for the git command line client and for the in-process go-git library
// in sub-packages. FetcherFunc is a convenience adapter that lets plain
// functions satisfy the interface.
//
// Every fetch is shallow and single-branch: only the pinned reference
// is retrieved, with history truncated to Request.HistoryDepth commits.
package fetch
