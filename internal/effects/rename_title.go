package effects

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shipbot/internal/gitflow"
)

// RenameTitle renames regular release PRs to a standard title so that the
// merge log reads uniformly across repositories.
type RenameTitle struct {
	host  HostAPI
	repos []string
}

// NewRenameTitle constructs the effect. An empty allowlist enables the
// effect for every repository.
func NewRenameTitle(host HostAPI, repos []string) *RenameTitle {
	return &RenameTitle{host: host, repos: repos}
}

func (e *RenameTitle) Name() string { return "rename-title" }

func (e *RenameTitle) ShouldRun(event *Event) bool {
	if event.Kind != KindPullRequest || event.PullRequest.Action != "opened" {
		return false
	}
	if !repoAllowed(e.repos, event.Repo()) {
		return false
	}
	pr := event.PullRequest.PullRequest
	return gitflow.IsRegularRelease(pr.Base.Ref, pr.Head.Ref)
}

func (e *RenameTitle) Run(ctx context.Context, event *Event) (string, error) {
	pr := event.PullRequest.PullRequest
	title := ReleaseTitle(pr.Base.Ref)

	if err := e.host.UpdatePullRequestTitle(ctx, event.Owner(), event.Repo(), event.PullRequest.Number, title); err != nil {
		log.Error().Err(err).
			Str("repo", event.Repo()).
			Int("pr", event.PullRequest.Number).
			Msg("Failed to rename release PR")
		return "", err
	}
	return fmt.Sprintf("Renamed PR #%d to %q", event.PullRequest.Number, title), nil
}

// ReleaseTitle returns the standard title for a release PR targeting the
// given base branch.
func ReleaseTitle(base string) string {
	if gitflow.IsProductionBranch(base) {
		return "Production Release"
	}
	return "Staging Release"
}
