package effects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenameTitleShouldRun(t *testing.T) {
	effect := NewRenameTitle(newFakeHost(), nil)

	assert.True(t, effect.ShouldRun(prEvent("opened", "master", "release")))
	assert.True(t, effect.ShouldRun(prEvent("opened", "release", "develop")))

	assert.False(t, effect.ShouldRun(prEvent("synchronize", "master", "release")))
	assert.False(t, effect.ShouldRun(prEvent("opened", "master", "sc-1/feature")))
	assert.False(t, effect.ShouldRun(prEvent("opened", "develop", "sc-1/feature")))
}

func TestRenameTitleHonorsAllowlist(t *testing.T) {
	effect := NewRenameTitle(newFakeHost(), []string{"api"})
	assert.False(t, effect.ShouldRun(prEvent("opened", "master", "release")))
}

func TestRenameTitleRun(t *testing.T) {
	host := newFakeHost()
	effect := NewRenameTitle(host, nil)

	message, err := effect.Run(context.Background(), prEvent("opened", "master", "release"))
	require.NoError(t, err)
	assert.Equal(t, `Renamed PR #42 to "Production Release"`, message)
	assert.Equal(t, "Production Release", host.renamedTitles[42])

	_, err = effect.Run(context.Background(), prEvent("opened", "release", "develop"))
	require.NoError(t, err)
	assert.Equal(t, "Staging Release", host.renamedTitles[42])
}
