package effects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipbot/internal/github"
)

func mergedPREvent(base string, labels ...string) *Event {
	event := prEvent("closed", base, "release")
	event.PullRequest.PullRequest.Merged = true
	event.PullRequest.PullRequest.Body = "changelog body"
	for _, name := range labels {
		event.PullRequest.PullRequest.Labels = append(event.PullRequest.PullRequest.Labels, Label{Name: name})
	}
	return event
}

func TestTagReleaseShouldRun(t *testing.T) {
	effect := NewTagRelease(newFakeHost(), nil, nil)

	assert.True(t, effect.ShouldRun(mergedPREvent("master")))
	assert.True(t, effect.ShouldRun(mergedPREvent("production")))

	unmerged := prEvent("closed", "master", "release")
	assert.False(t, effect.ShouldRun(unmerged))
	assert.False(t, effect.ShouldRun(mergedPREvent("release")))
	assert.False(t, effect.ShouldRun(prEvent("opened", "master", "release")))
}

func TestTagReleaseBumpsFromLabels(t *testing.T) {
	host := newFakeHost()
	host.latest = &github.Release{TagName: "v1.2.3"}
	effect := NewTagRelease(host, nil, nil)

	message, err := effect.Run(context.Background(), mergedPREvent("master", "release-major"))
	require.NoError(t, err)
	assert.Equal(t, "Tagged release v2 from PR #42", message)

	require.Len(t, host.createdReleases, 1)
	created := host.createdReleases[0]
	assert.Equal(t, "v2", created.TagName)
	assert.Equal(t, "v2", created.Name)
	assert.Equal(t, "changelog body", created.Body)
	assert.Equal(t, "true", created.MakeLatest)
	assert.Equal(t, "master", created.TargetCommitish)
}

func TestTagReleaseUsesRepoDefault(t *testing.T) {
	host := newFakeHost()
	host.latest = &github.Release{TagName: "1.2.3"}
	effect := NewTagRelease(host, nil, map[string]string{"web": "patch"})

	_, err := effect.Run(context.Background(), mergedPREvent("master"))
	require.NoError(t, err)
	require.Len(t, host.createdReleases, 1)
	assert.Equal(t, "1.2.4", host.createdReleases[0].TagName)
}

func TestTagReleaseFirstRelease(t *testing.T) {
	host := newFakeHost()
	effect := NewTagRelease(host, nil, nil)

	_, err := effect.Run(context.Background(), mergedPREvent("master"))
	require.NoError(t, err)
	require.Len(t, host.createdReleases, 1)
	assert.Equal(t, "0.1", host.createdReleases[0].TagName)
}
