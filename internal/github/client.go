// Package github is a thin client for the GitHub REST API v3, covering the
// endpoints shipbot needs: pull requests, labels, releases, search, and
// repository contents.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API request failed with status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the GitHub API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client calls the GitHub REST API on behalf of the bot.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient constructs a GitHub client with sensible defaults.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:     baseURL,
		token:       token,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Second), 5), // 5 requests per second
	}
}

func (c *Client) do(ctx context.Context, method, path string, requestBody, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	var bodyReader io.Reader
	if requestBody != nil {
		jsonBody, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "shipbot")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// PullRequest is the subset of the pulls API response the bot reads.
type PullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Merged  bool   `json:"merged"`
	Head    Branch `json:"head"`
	Base    Branch `json:"base"`
}

// Branch is a PR head or base reference.
type Branch struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// PullRequestDetails bundles the PR fields the reconciliation engine works
// on together with the PR's commit messages.
type PullRequestDetails struct {
	HeadRef        string
	BaseRef        string
	Body           string
	Title          string
	CommitMessages []string
}

// GetPullRequest fetches a single pull request.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	var pr PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)
	if err := c.do(ctx, http.MethodGet, path, nil, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// PullRequestDetails fetches a PR and its full commit message list.
func (c *Client) PullRequestDetails(ctx context.Context, owner, repo string, number int) (*PullRequestDetails, error) {
	pr, err := c.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	messages, err := c.ListCommitMessages(ctx, owner, repo, number)
	if err != nil {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to list PR commits")
		messages = nil
	}

	return &PullRequestDetails{
		HeadRef:        pr.Head.Ref,
		BaseRef:        pr.Base.Ref,
		Body:           pr.Body,
		Title:          pr.Title,
		CommitMessages: messages,
	}, nil
}

type commitEntry struct {
	Commit struct {
		Message string `json:"message"`
	} `json:"commit"`
}

// ListCommitMessages returns every commit message on a PR, following
// pagination to the end.
func (c *Client) ListCommitMessages(ctx context.Context, owner, repo string, number int) ([]string, error) {
	const perPage = 100
	var messages []string

	for page := 1; ; page++ {
		var commits []commitEntry
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/commits?per_page=%d&page=%d",
			owner, repo, number, perPage, page)
		if err := c.do(ctx, http.MethodGet, path, nil, &commits); err != nil {
			return nil, err
		}

		for _, commit := range commits {
			messages = append(messages, commit.Commit.Message)
		}

		if len(commits) < perPage {
			return messages, nil
		}
	}
}

type fileEntry struct {
	Filename string `json:"filename"`
}

// AnyChangedFileMatches scans the PR's changed files page by page and
// reports whether any filename matches the pattern. Stops at the first hit.
func (c *Client) AnyChangedFileMatches(ctx context.Context, owner, repo string, number int, pattern *regexp.Regexp) (bool, error) {
	const perPage = 24

	for page := 1; ; page++ {
		var files []fileEntry
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/files?per_page=%d&page=%d",
			owner, repo, number, perPage, page)
		if err := c.do(ctx, http.MethodGet, path, nil, &files); err != nil {
			return false, err
		}

		for _, file := range files {
			if pattern.MatchString(file.Filename) {
				return true, nil
			}
		}

		if len(files) < perPage {
			return false, nil
		}
	}
}

// UpdatePullRequestBody replaces the PR description.
func (c *Client) UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)
	return c.do(ctx, http.MethodPatch, path, map[string]string{"body": body}, nil)
}

// UpdatePullRequestTitle replaces the PR title.
func (c *Client) UpdatePullRequestTitle(ctx context.Context, owner, repo string, number int, title string) error {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)
	return c.do(ctx, http.MethodPatch, path, map[string]string{"title": title}, nil)
}

// GetLabel checks that a label definition exists on the repository.
func (c *Client) GetLabel(ctx context.Context, owner, repo, name string) error {
	path := fmt.Sprintf("/repos/%s/%s/labels/%s", owner, repo, url.PathEscape(name))
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// CreateLabel creates a label definition on the repository.
func (c *Client) CreateLabel(ctx context.Context, owner, repo, name, color, description string) error {
	path := fmt.Sprintf("/repos/%s/%s/labels", owner, repo)
	return c.do(ctx, http.MethodPost, path, map[string]string{
		"name":        name,
		"color":       color,
		"description": description,
	}, nil)
}

type labelEntry struct {
	Name string `json:"name"`
}

// ListIssueLabels returns the label names currently on an issue or PR.
func (c *Client) ListIssueLabels(ctx context.Context, owner, repo string, number int) ([]string, error) {
	var labels []labelEntry
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/labels", owner, repo, number)
	if err := c.do(ctx, http.MethodGet, path, nil, &labels); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(labels))
	for _, label := range labels {
		names = append(names, label.Name)
	}
	return names, nil
}

// AddLabels adds labels to an issue or PR.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/labels", owner, repo, number)
	return c.do(ctx, http.MethodPost, path, map[string][]string{"labels": labels}, nil)
}

// RemoveLabel removes a label from an issue or PR.
func (c *Client) RemoveLabel(ctx context.Context, owner, repo string, number int, name string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/labels/%s", owner, repo, number, url.PathEscape(name))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SearchItem is one result from the issue/PR search API.
type SearchItem struct {
	Number        int    `json:"number"`
	RepositoryURL string `json:"repository_url"`
}

type searchResponse struct {
	Items []SearchItem `json:"items"`
}

// SearchIssues runs an issue/PR search query and returns the first page of
// results (up to 100 items).
func (c *Client) SearchIssues(ctx context.Context, query string) ([]SearchItem, error) {
	var result searchResponse
	path := "/search/issues?per_page=100&q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Release is the subset of the releases API response the bot reads.
type Release struct {
	ID      int64  `json:"id"`
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
}

// LatestRelease returns the most recent release, or nil when the repository
// has none.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	var releases []Release
	path := fmt.Sprintf("/repos/%s/%s/releases?per_page=1", owner, repo)
	if err := c.do(ctx, http.MethodGet, path, nil, &releases); err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, nil
	}
	return &releases[0], nil
}

// CreateReleaseParams are the fields for creating a release.
type CreateReleaseParams struct {
	TagName         string `json:"tag_name"`
	Name            string `json:"name"`
	Body            string `json:"body,omitempty"`
	MakeLatest      string `json:"make_latest,omitempty"`
	TargetCommitish string `json:"target_commitish,omitempty"`
}

// CreateRelease creates a release and its tag.
func (c *Client) CreateRelease(ctx context.Context, owner, repo string, params CreateReleaseParams) (*Release, error) {
	var release Release
	path := fmt.Sprintf("/repos/%s/%s/releases", owner, repo)
	if err := c.do(ctx, http.MethodPost, path, params, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// UpdateReleaseBody replaces the body of an existing release.
func (c *Client) UpdateReleaseBody(ctx context.Context, owner, repo string, releaseID int64, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/releases/%d", owner, repo, releaseID)
	return c.do(ctx, http.MethodPatch, path, map[string]string{"body": body}, nil)
}

type releaseNotesResponse struct {
	Body string `json:"body"`
}

// GenerateReleaseNotes asks GitHub to generate release notes for a tag.
func (c *Client) GenerateReleaseNotes(ctx context.Context, owner, repo, tagName string) (string, error) {
	var notes releaseNotesResponse
	path := fmt.Sprintf("/repos/%s/%s/releases/generate-notes", owner, repo)
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"tag_name": tagName}, &notes); err != nil {
		return "", err
	}
	return notes.Body, nil
}

type contentResponse struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// FileContent reads a file's decoded content at a ref.
func (c *Client) FileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	var content contentResponse
	apiPath := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s", owner, repo, path, url.QueryEscape(ref))
	if err := c.do(ctx, http.MethodGet, apiPath, nil, &content); err != nil {
		return "", err
	}

	if content.Type != "file" {
		return "", fmt.Errorf("%s is not a file at ref %s", path, ref)
	}

	// The contents API wraps base64 at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("failed to decode content of %s: %w", path, err)
	}

	return string(decoded), nil
}
