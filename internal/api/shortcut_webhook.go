package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ShortcutWebhookPayload is the change notification Shortcut delivers when
// entities in the workspace are modified.
type ShortcutWebhookPayload struct {
	ID        string           `json:"id"`
	ChangedAt string           `json:"changed_at"`
	Actions   []ShortcutAction `json:"actions"`
}

// ShortcutAction is one entity change inside a webhook delivery.
type ShortcutAction struct {
	ID         int64           `json:"id"`
	EntityType string          `json:"entity_type"`
	Action     string          `json:"action"`
	Name       string          `json:"name"`
	Changes    ShortcutChanges `json:"changes"`
}

// ShortcutChanges carries the field transitions of an update action.
type ShortcutChanges struct {
	WorkflowStateID *ShortcutStateChange `json:"workflow_state_id"`
}

// ShortcutStateChange is a workflow state transition.
type ShortcutStateChange struct {
	New int64 `json:"new"`
	Old int64 `json:"old"`
}

// handleShortcutWebhook re-verifies open production PRs when a story moves
// into or out of the QA or ready-to-ship workflow states. Only the first
// relevant transition in a delivery triggers re-verification.
func (s *Server) handleShortcutWebhook(c echo.Context) error {
	var payload ShortcutWebhookPayload
	if err := c.Bind(&payload); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid JSON payload")
	}
	if payload.Actions == nil {
		return respond(c, http.StatusBadRequest, "Invalid webhook payload: missing actions")
	}

	log.Info().Str("webhook", payload.ID).Msg("Received Shortcut webhook")

	for _, action := range payload.Actions {
		if action.EntityType != "story" || action.Action != "update" || action.Changes.WorkflowStateID == nil {
			continue
		}

		change := action.Changes.WorkflowStateID
		log.Info().
			Int64("story", action.ID).
			Int64("old_state", change.Old).
			Int64("new_state", change.New).
			Msg("Story workflow state changed")

		if !s.relevantState(change.New) && !s.relevantState(change.Old) {
			continue
		}

		count := s.verifier.ReverifyStory(c.Request().Context(), action.ID)
		return respond(c, http.StatusOK, fmt.Sprintf("Re-verified %d PRs for story sc-%d", count, action.ID))
	}

	return respond(c, http.StatusOK, "Webhook received but no action taken")
}

func (s *Server) relevantState(stateID int64) bool {
	return stateID == s.qaStateID || stateID == s.readyStateID
}
