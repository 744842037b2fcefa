package effects

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shipbot/internal/gitflow"
	"github.com/shipbot/internal/github"
	"github.com/shipbot/internal/version"
)

// TagRelease cuts a release when a PR is merged into production. The new
// tag is derived from the latest existing release and the PR's release-*
// labels, and the release body is the merged PR's body.
type TagRelease struct {
	host     HostAPI
	repos    []string
	defaults map[string]string
}

// NewTagRelease constructs the effect. defaults maps repository name to
// its per-repo bump key for PRs without release-* labels.
func NewTagRelease(host HostAPI, repos []string, defaults map[string]string) *TagRelease {
	return &TagRelease{host: host, repos: repos, defaults: defaults}
}

func (e *TagRelease) Name() string { return "tag-release" }

func (e *TagRelease) ShouldRun(event *Event) bool {
	if event.Kind != KindPullRequest || event.PullRequest.Action != "closed" {
		return false
	}
	if !repoAllowed(e.repos, event.Repo()) {
		return false
	}
	pr := event.PullRequest.PullRequest
	return pr.Merged && gitflow.IsProductionBranch(pr.Base.Ref)
}

func (e *TagRelease) Run(ctx context.Context, event *Event) (string, error) {
	owner, repo := event.Owner(), event.Repo()
	pr := event.PullRequest.PullRequest

	latest, err := e.host.LatestRelease(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("fetching latest release: %w", err)
	}

	parts := version.Parts{Version: "0"}
	if latest != nil {
		parts = version.Split(latest.TagName)
	}

	labels := make([]string, 0, len(pr.Labels))
	for _, label := range pr.Labels {
		labels = append(labels, label.Name)
	}
	key := version.KeyFromLabels(labels, version.BumpKey(e.defaults[repo]))
	parts.Version = version.Bump(parts.Version, key)
	tag := parts.Join()

	release, err := e.host.CreateRelease(ctx, owner, repo, github.CreateReleaseParams{
		TagName:         tag,
		Name:            tag,
		Body:            pr.Body,
		MakeLatest:      "true",
		TargetCommitish: pr.Base.Ref,
	})
	if err != nil {
		return "", fmt.Errorf("creating release %s: %w", tag, err)
	}

	log.Info().
		Str("repo", repo).
		Str("tag", release.TagName).
		Str("bump", string(key)).
		Msg("Tagged release")
	return fmt.Sprintf("Tagged release %s from PR #%d", release.TagName, event.PullRequest.Number), nil
}
