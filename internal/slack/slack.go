// Package slack posts messages to Slack incoming webhooks using Block Kit
// payloads.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Block is a Block Kit section block.
type Block struct {
	Type string `json:"type"`
	Text *Text  `json:"text,omitempty"`
}

// Text is mrkdwn text inside a block.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Attachment is a colored attachment carrying its own blocks.
type Attachment struct {
	Color  string  `json:"color,omitempty"`
	Blocks []Block `json:"blocks"`
}

type message struct {
	Blocks      []Block      `json:"blocks"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

const (
	colorPassed = "#4bff48"
	colorFailed = "#ff4848"
)

// Sender posts messages to incoming webhook URLs.
type Sender struct {
	httpClient *http.Client
}

// NewSender constructs a Slack sender.
func NewSender() *Sender {
	return &Sender{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

func markdownBlock(text string) Block {
	return Block{Type: "section", Text: &Text{Type: "mrkdwn", Text: text}}
}

// Send posts markdown messages, each as its own section block, with
// optional attachments. When passed is non-nil the attachments are colored
// green or red accordingly. An empty webhook URL is a silent no-op.
func (s *Sender) Send(ctx context.Context, webhookURL string, messages []string, attachments []string, passed *bool) error {
	if webhookURL == "" {
		return nil
	}

	payload := message{}
	for _, text := range messages {
		payload.Blocks = append(payload.Blocks, markdownBlock(text))
	}

	for _, text := range attachments {
		attachment := Attachment{Blocks: []Block{markdownBlock(text)}}
		if passed != nil {
			if *passed {
				attachment.Color = colorPassed
			} else {
				attachment.Color = colorFailed
			}
		}
		payload.Attachments = append(payload.Attachments, attachment)
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	log.Debug().Int("blocks", len(payload.Blocks)).Msg("Posted slack message")
	return nil
}
