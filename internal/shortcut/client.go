// Package shortcut talks to the Shortcut story tracker and extracts story
// references from git metadata.
package shortcut

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Story is a read-only snapshot of a tracker story.
type Story struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	WorkflowStateID int64  `json:"workflow_state_id"`
}

// Client fetches stories from the Shortcut REST API.
type Client struct {
	baseURL    string
	token      string
	workspace  string
	httpClient *http.Client
}

// NewClient constructs a Shortcut client.
func NewClient(baseURL, token, workspace string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		workspace:  workspace,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchStory fetches a single story by id. On any failure it logs and
// returns nil; callers treat nil as "unknown state", not as fatal. One
// attempt per id, no retries.
func (c *Client) FetchStory(ctx context.Context, id int64) *Story {
	apiURL := fmt.Sprintf("%s/stories/%d", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		log.Error().Err(err).Int64("story", id).Msg("Failed to build story request")
		return nil
	}
	req.Header.Set("Shortcut-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Int64("story", id).Msg("Failed to fetch story")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Int64("story", id).Msg("Story fetch returned non-OK status")
		return nil
	}

	var story Story
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		log.Error().Err(err).Int64("story", id).Msg("Failed to decode story")
		return nil
	}

	return &story
}

// StoryWebURL returns the browser URL for a story.
func (c *Client) StoryWebURL(id int64) string {
	return fmt.Sprintf("https://app.shortcut.com/%s/story/%d", c.workspace, id)
}
