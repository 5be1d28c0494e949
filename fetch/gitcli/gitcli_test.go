package gitcli_test

import (
	"context"
	"os"
	oe "os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/repo_provision/fetch"
	"github.com/byte4ever/repo_provision/fetch/gitcli"
)

// gitCmd runs a git command in the given directory and
// returns its output.
func gitCmd(
	tb testing.TB,
	dir string,
	args ...string,
) string {
	tb.Helper()

	//nolint:gosec // test helper
	cmd := oe.CommandContext(
		context.Background(), "git", args...,
	)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		tb.Fatalf(
			"git %v failed: %s: %v",
			args, string(out), err,
		)
	}

	return string(out)
}

// initRemote creates a repository with two commits and
// the tag v1.0.0 at HEAD, returning a file:// URL.
func initRemote(tb testing.TB) string {
	tb.Helper()

	dir := tb.TempDir()

	cmds := [][]string{
		{"init", "-b", "main"},
		{
			"config",
			"user.email", "test@test.com",
		},
		{"config", "user.name", "Test"},
		{
			"config", "core.hooksPath",
			"/dev/null",
		},
	}

	for _, args := range cmds {
		gitCmd(tb, dir, args...)
	}

	fp := filepath.Join(dir, "a.txt")
	require.NoError(
		tb,
		os.WriteFile(fp, []byte("one\n"), 0o600),
	)
	gitCmd(tb, dir, "add", "a.txt")
	gitCmd(tb, dir, "commit", "-m", "one")

	require.NoError(
		tb,
		os.WriteFile(fp, []byte("two\n"), 0o600),
	)
	gitCmd(tb, dir, "commit", "-am", "two")

	gitCmd(tb, dir, "tag", "v1.0.0")

	return "file://" + dir
}

func TestFetch_tag(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "dest")

	commit, err := gitcli.New("").Fetch(
		context.Background(),
		fetch.Request{
			URL:       initRemote(t),
			Reference: "v1.0.0",
			Dir:       dest,
		},
	)

	require.NoError(t, err)
	assert.Len(t, commit, 40)
	assert.FileExists(
		t, filepath.Join(dest, "a.txt"),
	)
}

func TestFetch_branch(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "dest")

	commit, err := gitcli.New("").Fetch(
		context.Background(),
		fetch.Request{
			URL:       initRemote(t),
			Reference: "main",
			Dir:       dest,
		},
	)

	require.NoError(t, err)
	assert.Len(t, commit, 40)
}

func TestFetch_is_shallow(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "dest")

	_, err := gitcli.New("").Fetch(
		context.Background(),
		fetch.Request{
			URL:       initRemote(t),
			Reference: "v1.0.0",
			Dir:       dest,
		},
	)
	require.NoError(t, err)

	count := gitCmd(
		t, dest, "rev-list", "--count", "HEAD",
	)
	assert.Equal(t, "1", strings.TrimSpace(count))
}

func TestFetch_unknown_reference(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "dest")

	_, err := gitcli.New("").Fetch(
		context.Background(),
		fetch.Request{
			URL:       initRemote(t),
			Reference: "does-not-exist",
			Dir:       dest,
		},
	)

	assert.Error(t, err)
}

func TestFetch_missing_binary(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "dest")

	_, err := gitcli.New(
		"definitely-not-a-git-binary",
	).Fetch(
		context.Background(),
		fetch.Request{
			URL:       "https://example.com/r.git",
			Reference: "v1.0.0",
			Dir:       dest,
		},
	)

	assert.Error(t, err)
}

func TestNew_defaults_to_git(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "git", gitcli.New("").GitCmd)
	assert.Equal(
		t,
		"/usr/bin/git",
		gitcli.New("/usr/bin/git").GitCmd,
	)
}
