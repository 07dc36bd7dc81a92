package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

// GitHubAdapter fetches pull-request diffs from the GitHub API.
type GitHubAdapter interface {
	// Token returns an API token, or empty when none is available.
	Token() string

	// FetchDiff downloads the unified diff for a pull request.
	FetchDiff(ctx context.Context, owner, repo string, number int, token string) (string, error)
}

// HTTPGitHubAdapter talks to api.github.com over HTTP.
type HTTPGitHubAdapter struct {
	client  *http.Client
	baseURL string
}

// NewGitHubAdapter constructs an HTTPGitHubAdapter with a default client.
func NewGitHubAdapter() *HTTPGitHubAdapter {
	return &HTTPGitHubAdapter{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.github.com",
	}
}

// NewGitHubAdapterAt constructs an adapter against a custom API base URL.
// Tests point this at a local server.
func NewGitHubAdapterAt(baseURL string) *HTTPGitHubAdapter {
	return &HTTPGitHubAdapter{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// Token reads GITHUB_TOKEN, falling back to the gh CLI.
func (a *HTTPGitHubAdapter) Token() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}

	out, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(out))
}

// FetchDiff downloads the diff representation of a pull request.
func (a *HTTPGitHubAdapter) FetchDiff(ctx context.Context, owner, repo string, number int, token string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", a.baseURL, owner, repo, number)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Accept", "application/vnd.github.v3.diff")
	req.Header.Set("User-Agent", "testament")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch pull request: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github api error: %s - %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return string(body), nil
}
