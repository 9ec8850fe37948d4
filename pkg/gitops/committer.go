package gitops

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// commitMessagePrefix is the mandatory literal prefix on every commit the
// Committer makes (spec.md §4.6).
const commitMessagePrefix = "[AI-AGENT]"

const (
	committerName  = "Heal Loop Agent"
	committerEmail = "heal-loop@agents.local"
)

// Committer configures git identity, creates/checks out the run's branch,
// groups applied fixes by file, commits, and pushes with token injection
// (spec.md §4.6).
type Committer struct {
	WorkingTreePath string
	Token           string
}

// NewCommitter returns a Committer operating against workingTreePath.
func NewCommitter(workingTreePath, token string) *Committer {
	return &Committer{WorkingTreePath: workingTreePath, Token: token}
}

// EnsureBranch checks out branch, creating it if it doesn't exist locally.
func (c *Committer) EnsureBranch(ctx context.Context, branch string) error {
	if err := c.configureIdentity(ctx); err != nil {
		return err
	}
	if err := c.run(ctx, "checkout", branch); err == nil {
		return nil
	}
	return c.run(ctx, "checkout", "-b", branch)
}

func (c *Committer) configureIdentity(ctx context.Context) error {
	if err := c.run(ctx, "config", "user.name", committerName); err != nil {
		return err
	}
	return c.run(ctx, "config", "user.email", committerEmail)
}

// Commit groups fixes whose status is Fixed by file, stages each file, and
// creates one commit per call whose message begins with commitMessagePrefix
// followed by a semicolon-joined per-fix description. Returns false (and
// makes no commit) if no fix in fixes has status Fixed.
func (c *Committer) Commit(ctx context.Context, fixes []runmodel.AppliedFix) (committed bool, err error) {
	byFile := make(map[string][]runmodel.AppliedFix)
	var files []string
	for _, f := range fixes {
		if f.Status != runmodel.FixStatusFixed {
			continue
		}
		if _, seen := byFile[f.File]; !seen {
			files = append(files, f.File)
		}
		byFile[f.File] = append(byFile[f.File], f)
	}
	if len(files) == 0 {
		return false, nil
	}
	sort.Strings(files)

	for _, file := range files {
		if err := c.run(ctx, "add", file); err != nil {
			return false, fmt.Errorf("gitops: stage %s: %w", file, err)
		}
	}

	message := buildCommitMessage(byFile, files)
	if err := c.run(ctx, "commit", "-m", message); err != nil {
		return false, fmt.Errorf("gitops: commit: %w", err)
	}
	return true, nil
}

func buildCommitMessage(byFile map[string][]runmodel.AppliedFix, files []string) string {
	var parts []string
	for _, file := range files {
		for _, f := range byFile[file] {
			parts = append(parts, fmt.Sprintf("%s@%s:%d %s", f.Kind, f.File, f.Line, f.Description))
		}
	}
	return commitMessagePrefix + " " + strings.Join(parts, "; ")
}

// Push rewrites origin to carry the token (if configured and not already
// present) and force-pushes branch, setting upstream. Failures propagate to
// the caller as iteration-level errors (spec.md §4.6).
func (c *Committer) Push(ctx context.Context, branch string) error {
	if c.Token != "" {
		if err := c.injectTokenIntoOrigin(ctx); err != nil {
			return fmt.Errorf("gitops: configure push credentials: %w", err)
		}
	}
	if err := c.run(ctx, "push", "--force", "--set-upstream", "origin", branch); err != nil {
		return fmt.Errorf("gitops: push %s: %w", branch, err)
	}
	return nil
}

func (c *Committer) injectTokenIntoOrigin(ctx context.Context) error {
	out, err := c.output(ctx, "remote", "get-url", "origin")
	if err != nil {
		return err
	}
	origin := strings.TrimSpace(out)
	if strings.Contains(origin, "@") || !strings.HasPrefix(origin, "https://") {
		return nil
	}
	authed := "https://" + c.Token + "@" + strings.TrimPrefix(origin, "https://")
	return c.run(ctx, "remote", "set-url", "origin", authed)
}

func (c *Committer) run(ctx context.Context, args ...string) error {
	_, err := c.output(ctx, args...)
	return err
}

func (c *Committer) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkingTreePath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(out))
	}
	return string(out), nil
}
