package effects

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"
	"github.com/shipbot/internal/gitflow"
)

var resyncCommandRe = regexp.MustCompile(`(?i)^\s*resync\s+release\s+notes\s*$`)

// ResyncReleaseNotes lets anyone force a re-sync of a PR's title, story
// changelog, and QA label by commenting "resync release notes" on it.
type ResyncReleaseNotes struct {
	engine QAEngine
	host   HostAPI
	repos  []string
}

// NewResyncReleaseNotes constructs the effect.
func NewResyncReleaseNotes(engine QAEngine, host HostAPI, repos []string) *ResyncReleaseNotes {
	return &ResyncReleaseNotes{engine: engine, host: host, repos: repos}
}

func (e *ResyncReleaseNotes) Name() string { return "resync-release-notes" }

func (e *ResyncReleaseNotes) ShouldRun(event *Event) bool {
	if event.Kind != KindIssueComment || event.IssueComment.Action != "created" {
		return false
	}
	if event.IssueComment.Issue.PullRequest == nil {
		return false
	}
	if !repoAllowed(e.repos, event.Repo()) {
		return false
	}
	return resyncCommandRe.MatchString(event.IssueComment.Comment.Body)
}

func (e *ResyncReleaseNotes) Run(ctx context.Context, event *Event) (string, error) {
	owner, repo := event.Owner(), event.Repo()
	number := event.IssueComment.Issue.Number

	pr, err := e.host.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return "", fmt.Errorf("fetching PR #%d: %w", number, err)
	}

	if gitflow.IsRegularRelease(pr.Base.Ref, pr.Head.Ref) {
		title := ReleaseTitle(pr.Base.Ref)
		if err := e.host.UpdatePullRequestTitle(ctx, owner, repo, number, title); err != nil {
			log.Error().Err(err).Str("repo", repo).Int("pr", number).Msg("Failed to resync release PR title")
		}
	}

	e.engine.Reconcile(ctx, owner, repo, number)
	return fmt.Sprintf("Resynced release notes for PR #%d", number), nil
}
