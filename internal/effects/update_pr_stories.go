package effects

import (
	"context"
	"fmt"

	"github.com/shipbot/internal/gitflow"
)

var reconcileTriggerActions = []string{"opened", "reopened", "synchronize"}

// UpdatePRStories keeps a PR's story changelog and untested label in sync
// with the tracker whenever the PR changes.
type UpdatePRStories struct {
	engine QAEngine
}

// NewUpdatePRStories constructs the effect.
func NewUpdatePRStories(engine QAEngine) *UpdatePRStories {
	return &UpdatePRStories{engine: engine}
}

func (e *UpdatePRStories) Name() string { return "update-pr-stories" }

func (e *UpdatePRStories) ShouldRun(event *Event) bool {
	if event.Kind != KindPullRequest {
		return false
	}

	actionMatches := false
	for _, action := range reconcileTriggerActions {
		if event.PullRequest.Action == action {
			actionMatches = true
			break
		}
	}
	if !actionMatches {
		return false
	}

	base := event.PullRequest.PullRequest.Base.Ref
	return gitflow.IsProductionBranch(base) || gitflow.IsStagingBranch(base)
}

func (e *UpdatePRStories) Run(ctx context.Context, event *Event) (string, error) {
	number := event.PullRequest.Number
	e.engine.Reconcile(ctx, event.Owner(), event.Repo(), number)
	return fmt.Sprintf("Updated PR stories and QA status for PR #%d", number), nil
}
