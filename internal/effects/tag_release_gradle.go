package effects

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shipbot/internal/gitflow"
	"github.com/shipbot/internal/github"
	"github.com/shipbot/internal/version"
)

const gradleBuildFile = "app/build.gradle.kts"

// TagReleaseGradle cuts a release on pushes to production in mobile
// repositories whose version lives in the gradle build file rather than
// in the tag history. The release body is filled with generated notes
// after the tag exists.
type TagReleaseGradle struct {
	host  HostAPI
	repos []string
}

// NewTagReleaseGradle constructs the effect.
func NewTagReleaseGradle(host HostAPI, repos []string) *TagReleaseGradle {
	return &TagReleaseGradle{host: host, repos: repos}
}

func (e *TagReleaseGradle) Name() string { return "tag-release-gradle" }

func (e *TagReleaseGradle) ShouldRun(event *Event) bool {
	if event.Kind != KindPush {
		return false
	}
	if !repoAllowed(e.repos, event.Repo()) {
		return false
	}
	return gitflow.IsProductionBranch(event.Push.Branch())
}

func (e *TagReleaseGradle) Run(ctx context.Context, event *Event) (string, error) {
	owner, repo := event.Owner(), event.Repo()
	branch := event.Push.Branch()

	content, err := e.host.FileContent(ctx, owner, repo, gradleBuildFile, branch)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", gradleBuildFile, err)
	}

	tag := version.GradleVersionName(content)
	if tag == "" {
		return "", fmt.Errorf("no versionName found in %s", gradleBuildFile)
	}

	latest, err := e.host.LatestRelease(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("fetching latest release: %w", err)
	}
	if latest != nil && latest.TagName == tag {
		return fmt.Sprintf("Release %s already exists", tag), nil
	}

	release, err := e.host.CreateRelease(ctx, owner, repo, github.CreateReleaseParams{
		TagName:         tag,
		Name:            tag,
		MakeLatest:      "true",
		TargetCommitish: branch,
	})
	if err != nil {
		return "", fmt.Errorf("creating release %s: %w", tag, err)
	}

	// The notes endpoint needs the tag to exist, so the body is patched
	// in afterwards. A failure here leaves a tagged release with an empty
	// body, which is preferable to no release.
	notes, err := e.host.GenerateReleaseNotes(ctx, owner, repo, tag)
	if err != nil {
		log.Error().Err(err).Str("repo", repo).Str("tag", tag).Msg("Failed to generate release notes")
		return fmt.Sprintf("Tagged release %s without notes", tag), nil
	}
	if err := e.host.UpdateReleaseBody(ctx, owner, repo, release.ID, notes); err != nil {
		log.Error().Err(err).Str("repo", repo).Str("tag", tag).Msg("Failed to update release body")
		return fmt.Sprintf("Tagged release %s without notes", tag), nil
	}

	return fmt.Sprintf("Tagged release %s", tag), nil
}
