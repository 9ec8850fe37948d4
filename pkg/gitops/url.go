package gitops

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// RepoURLParts holds the parsed owner/repo of a GitHub repository URL.
type RepoURLParts struct {
	Owner string
	Repo  string
}

// repoURLPattern matches https://github.com/{owner}/{repo}[.git], the only
// shape submit-run accepts (spec.md §6).
var repoURLPattern = regexp.MustCompile(`^/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// ParseRepoURL parses a GitHub repository URL into its owner and repo.
func ParseRepoURL(rawURL string) (RepoURLParts, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return RepoURLParts{}, fmt.Errorf("malformed URL: %w", err)
	}

	host := strings.ToLower(parsed.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return RepoURLParts{}, fmt.Errorf("not a GitHub repository URL: %s", rawURL)
	}
	if parsed.Scheme != "https" {
		return RepoURLParts{}, fmt.Errorf("repository URL must use https: %s", rawURL)
	}

	matches := repoURLPattern.FindStringSubmatch(parsed.Path)
	if matches == nil {
		return RepoURLParts{}, fmt.Errorf("URL does not match https://github.com/{owner}/{repo}: %s", rawURL)
	}

	return RepoURLParts{Owner: matches[1], Repo: matches[2]}, nil
}
