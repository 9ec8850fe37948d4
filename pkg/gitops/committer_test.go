package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	run("init", "-b", "main")
	run("config", "user.name", "test")
	run("config", "user.email", "test@example.com")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("def f()\n"), 0o644))
	run("add", "a.py")
	run("commit", "-m", "initial")
	return dir
}

func TestCommitterEnsureBranchCreatesNew(t *testing.T) {
	dir := initRepo(t)
	c := NewCommitter(dir, "")
	require.NoError(t, c.EnsureBranch(t.Context(), "FEATURE_BRANCH"))

	out, err := c.output(t.Context(), "branch", "--show-current")
	require.NoError(t, err)
	require.Contains(t, out, "FEATURE_BRANCH")
}

func TestCommitterCommitGroupsByFileAndSkipsUnfixed(t *testing.T) {
	dir := initRepo(t)
	c := NewCommitter(dir, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("def f():\n"), 0o644))

	committed, err := c.Commit(t.Context(), []runmodel.AppliedFix{
		{FixProposal: runmodel.FixProposal{File: "a.py", Kind: runmodel.ErrorKindSyntax, Description: "added colon"}, Status: runmodel.FixStatusFixed},
		{FixProposal: runmodel.FixProposal{File: "b.py"}, Status: runmodel.FixStatusSkipped},
	})
	require.NoError(t, err)
	require.True(t, committed)

	out, err := c.output(t.Context(), "log", "-1", "--pretty=%B")
	require.NoError(t, err)
	require.Contains(t, out, commitMessagePrefix)
	require.Contains(t, out, "added colon")
}

func TestCommitterCommitNoFixesIsSkippedSilently(t *testing.T) {
	dir := initRepo(t)
	c := NewCommitter(dir, "")

	committed, err := c.Commit(t.Context(), []runmodel.AppliedFix{
		{FixProposal: runmodel.FixProposal{File: "a.py"}, Status: runmodel.FixStatusFailed, Reason: "x"},
	})
	require.NoError(t, err)
	require.False(t, committed)
}
