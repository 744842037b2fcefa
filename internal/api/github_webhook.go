package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/shipbot/internal/effects"
	"github.com/shipbot/internal/webhookutils"
)

// handleGithubWebhook routes a GitHub delivery to the effect registry. The
// event family comes from the X-GitHub-Event header, never from payload
// shape. Business failures inside effects are reported in the response
// body with a 200 so GitHub does not retry deliveries.
func (s *Server) handleGithubWebhook(c echo.Context) error {
	headers := c.Request().Header

	eventName, ok := webhookutils.EventName(headers)
	if !ok {
		return respond(c, http.StatusPreconditionFailed, "No X-GitHub-Event found on request")
	}

	deliveryID := webhookutils.DeliveryID(headers)
	logger := log.With().Str("delivery", deliveryID).Str("event", eventName).Logger()

	if eventName == "ping" {
		logger.Info().Msg("Received ping")
		return respond(c, http.StatusOK, "pong")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return respond(c, http.StatusBadRequest, "Failed to read request body")
	}

	event, err := decodeGithubEvent(eventName, body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to decode webhook payload")
		return respond(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	if event == nil {
		return respond(c, http.StatusPreconditionFailed, "Unsupported event: "+eventName)
	}

	logger.Info().Str("repo", event.Repo()).Msg("Processing webhook")

	messages := s.registry.Dispatch(c.Request().Context(), event)
	output := strings.Join(append([]string{"Processed"}, messages...), "\n")

	return respond(c, http.StatusOK, output)
}

// decodeGithubEvent decodes the payload for a supported event name, or
// returns a nil event for names the bot does not handle.
func decodeGithubEvent(eventName string, body []byte) (*effects.Event, error) {
	switch eventName {
	case "pull_request":
		var payload effects.PullRequestEvent
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		return &effects.Event{Kind: effects.KindPullRequest, PullRequest: &payload}, nil
	case "push":
		var payload effects.PushEvent
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		return &effects.Event{Kind: effects.KindPush, Push: &payload}, nil
	case "issue_comment":
		var payload effects.IssueCommentEvent
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}
		return &effects.Event{Kind: effects.KindIssueComment, IssueComment: &payload}, nil
	}
	return nil, nil
}
