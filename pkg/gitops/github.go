package gitops

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// defaultAPIBaseURL is the production GitHub REST API host.
const defaultAPIBaseURL = "https://api.github.com"

// GitHubClient provides HTTP access to the GitHub Actions REST API for
// listing workflows, dispatching runs, and polling run status (spec.md
// §4.7).
type GitHubClient struct {
	httpClient *http.Client
	token      string
	baseURL    string
}

// NewGitHubClient creates an HTTP client for GitHub Actions operations.
// token may be empty (public repos only, lower rate limits, no dispatch).
func NewGitHubClient(token string) *GitHubClient {
	return &GitHubClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
		baseURL:    defaultAPIBaseURL,
	}
}

// NewGitHubClientWithBaseURL is NewGitHubClient with an overridable API
// host, used by tests to point at an httptest server.
func NewGitHubClientWithBaseURL(token, baseURL string) *GitHubClient {
	c := NewGitHubClient(token)
	c.baseURL = baseURL
	return c
}

// Workflow is one entry from the repository's workflow list.
type Workflow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	State string `json:"state"`
}

type workflowListResponse struct {
	Workflows []Workflow `json:"workflows"`
}

// ListWorkflows returns every workflow configured for owner/repo.
func (c *GitHubClient) ListWorkflows(ctx context.Context, owner, repo string) ([]Workflow, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/workflows", c.baseURL, owner, repo)

	var out workflowListResponse
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return out.Workflows, nil
}

// DispatchWorkflow triggers workflowID on branch via workflow_dispatch. A
// 422/404 response means the workflow doesn't declare a workflow_dispatch
// trigger; the caller should treat that as "unsupported", not fatal.
func (c *GitHubClient) DispatchWorkflow(ctx context.Context, owner, repo string, workflowID int64, branch string) error {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%d/dispatches", c.baseURL, owner, repo, workflowID)

	body, _ := json.Marshal(map[string]string{"ref": branch})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build dispatch request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch workflow %d: %w", workflowID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
		return nil
	}
	return fmt.Errorf("dispatch unsupported or failed: HTTP %d", resp.StatusCode)
}

// WorkflowRun is one entry from the workflow-runs-on-branch listing.
type WorkflowRun struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
	HeadBranch string `json:"head_branch"`
}

type runListResponse struct {
	WorkflowRuns []WorkflowRun `json:"workflow_runs"`
}

// ListRunsOnBranch returns the repository's workflow runs for branch, most
// recent first (the API's natural ordering).
func (c *GitHubClient) ListRunsOnBranch(ctx context.Context, owner, repo, branch string) ([]WorkflowRun, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/runs?branch=%s", c.baseURL, owner, repo, branch)

	var out runListResponse
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, fmt.Errorf("list runs on branch %s: %w", branch, err)
	}
	return out.WorkflowRuns, nil
}

func (c *GitHubClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	c.setAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API returned HTTP %d for %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *GitHubClient) setAuthHeader(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
