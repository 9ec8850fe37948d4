package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Clone checks out repoURL into dir with a shallow (depth 1) clone, retrying
// with a full clone if the shallow attempt fails (spec.md §4.5). If token is
// non-empty it is injected into the clone URL for private-repo access.
func Clone(ctx context.Context, repoURL, dir, token string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	cloneURL := injectToken(repoURL, token)

	if err := runGit(ctx, "", "clone", "--depth", "1", cloneURL, dir); err == nil {
		return nil
	} else {
		logger.Warn("shallow clone failed, retrying with full clone", "error", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("analyzer: clear target dir before full clone: %w", err)
	}
	if err := runGit(ctx, "", "clone", cloneURL, dir); err != nil {
		return fmt.Errorf("analyzer: full clone failed: %w", err)
	}
	return nil
}

// injectToken rewrites a https://github.com/... URL to carry an access
// token as basic-auth credentials, used for private repositories.
func injectToken(repoURL, token string) string {
	if token == "" {
		return repoURL
	}
	const prefix = "https://"
	if !strings.HasPrefix(repoURL, prefix) {
		return repoURL
	}
	return prefix + token + "@" + strings.TrimPrefix(repoURL, prefix)
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(out))
	}
	return nil
}
