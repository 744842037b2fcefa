package qa

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/shipbot/internal/github"
)

// UntestedLabel marks PRs whose stories have not all passed QA.
const UntestedLabel = "untested"

const (
	untestedLabelColor       = "ff4848"
	untestedLabelDescription = "PR contains stories that have not been QA'd"
)

// LabelAPI is the label surface of the GitHub client.
type LabelAPI interface {
	GetLabel(ctx context.Context, owner, repo, name string) error
	CreateLabel(ctx context.Context, owner, repo, name, color, description string) error
	ListIssueLabels(ctx context.Context, owner, repo string, number int) ([]string, error)
	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error
	RemoveLabel(ctx context.Context, owner, repo string, number int, name string) error
}

// LabelManager keeps the untested sentinel label in sync with QA state.
// All failures are logged and swallowed: label drift is preferable to
// failing a reconciliation.
type LabelManager struct {
	api LabelAPI
}

// NewLabelManager constructs a label manager.
func NewLabelManager(api LabelAPI) *LabelManager {
	return &LabelManager{api: api}
}

// EnsureLabel idempotently creates the untested label definition on the
// repository.
func (m *LabelManager) EnsureLabel(ctx context.Context, owner, repo string) {
	err := m.api.GetLabel(ctx, owner, repo, UntestedLabel)
	if err == nil {
		return
	}

	if !github.IsNotFound(err) {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Msg("Failed to look up untested label")
		return
	}

	if err := m.api.CreateLabel(ctx, owner, repo, UntestedLabel, untestedLabelColor, untestedLabelDescription); err != nil {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Msg("Failed to create untested label")
		return
	}
	log.Info().Str("repo", owner+"/"+repo).Msg("Created untested label")
}

// AddIfMissing adds the untested label to a PR unless it is already there.
func (m *LabelManager) AddIfMissing(ctx context.Context, owner, repo string, number int) {
	current, err := m.api.ListIssueLabels(ctx, owner, repo, number)
	if err != nil {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to list PR labels")
		return
	}

	for _, name := range current {
		if name == UntestedLabel {
			return
		}
	}

	if err := m.api.AddLabels(ctx, owner, repo, number, []string{UntestedLabel}); err != nil {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to add untested label")
		return
	}
	log.Info().Str("repo", owner+"/"+repo).Int("pr", number).Msg("Added untested label")
}

// RemoveIfPresent removes the untested label from a PR if it carries it.
// A 404 on removal means another writer got there first; not an error.
func (m *LabelManager) RemoveIfPresent(ctx context.Context, owner, repo string, number int) {
	current, err := m.api.ListIssueLabels(ctx, owner, repo, number)
	if err != nil {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to list PR labels")
		return
	}

	present := false
	for _, name := range current {
		if name == UntestedLabel {
			present = true
			break
		}
	}
	if !present {
		return
	}

	if err := m.api.RemoveLabel(ctx, owner, repo, number, UntestedLabel); err != nil {
		if github.IsNotFound(err) {
			return
		}
		log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to remove untested label")
		return
	}
	log.Info().Str("repo", owner+"/"+repo).Int("pr", number).Msg("Removed untested label")
}

// Reconcile drives the label to the desired presence state.
func (m *LabelManager) Reconcile(ctx context.Context, owner, repo string, number int, shouldBePresent bool) {
	if shouldBePresent {
		m.AddIfMissing(ctx, owner, repo, number)
	} else {
		m.RemoveIfPresent(ctx, owner, repo, number)
	}
}
