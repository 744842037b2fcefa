// Package effects routes decoded webhook events through an ordered list of
// independent automation effects. Each effect decides for itself whether an
// event concerns it; a failing effect never prevents the others from
// running.
package effects

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/shipbot/internal/github"
	"github.com/shipbot/internal/qa"
)

// Effect is one independent webhook-driven automation.
type Effect interface {
	Name() string
	ShouldRun(event *Event) bool
	Run(ctx context.Context, event *Event) (string, error)
}

// HostAPI is the GitHub surface effects use beyond the QA engine.
type HostAPI interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	AnyChangedFileMatches(ctx context.Context, owner, repo string, number int, pattern *regexp.Regexp) (bool, error)
	UpdatePullRequestTitle(ctx context.Context, owner, repo string, number int, title string) error
	LatestRelease(ctx context.Context, owner, repo string) (*github.Release, error)
	CreateRelease(ctx context.Context, owner, repo string, params github.CreateReleaseParams) (*github.Release, error)
	UpdateReleaseBody(ctx context.Context, owner, repo string, releaseID int64, body string) error
	GenerateReleaseNotes(ctx context.Context, owner, repo, tagName string) (string, error)
	FileContent(ctx context.Context, owner, repo, path, ref string) (string, error)
}

// QAEngine is the reconciliation surface effects use.
type QAEngine interface {
	Reconcile(ctx context.Context, owner, repo string, number int) qa.Result
	ChangelogItems(ctx context.Context, owner, repo string, number int) ([]qa.ChangelogItem, error)
}

// Notifier posts chat messages.
type Notifier interface {
	Send(ctx context.Context, webhookURL string, messages, attachments []string, passed *bool) error
}

// Options carries the per-effect configuration. Empty repo allowlists mean
// the effect applies everywhere.
type Options struct {
	RenameRepos          []string
	ReleaseRepos         []string
	GradleRepos          []string
	ResyncRepos          []string
	VersionDefaults      map[string]string
	StagingWebhookURL    string
	ProductionWebhookURL string
}

func repoAllowed(allowlist []string, repo string) bool {
	if len(allowlist) == 0 {
		return true
	}
	for _, name := range allowlist {
		if name == repo {
			return true
		}
	}
	return false
}

// Registry holds the ordered effect list and dispatches events to it.
type Registry struct {
	effects []Effect
}

// NewRegistry constructs a registry over the given effects.
func NewRegistry(effects ...Effect) *Registry {
	return &Registry{effects: effects}
}

// Dispatch runs every effect against the event and collects one outcome
// message per effect. Errors and panics are demoted to messages so that
// independent effects never block each other.
func (r *Registry) Dispatch(ctx context.Context, event *Event) []string {
	messages := make([]string, 0, len(r.effects))

	for _, effect := range r.effects {
		if !effect.ShouldRun(event) {
			messages = append(messages, fmt.Sprintf("Skipped %s effect", effect.Name()))
			continue
		}

		message, err := runEffect(ctx, effect, event)
		if err != nil {
			log.Error().Err(err).Str("effect", effect.Name()).Msg("Effect failed")
			messages = append(messages, fmt.Sprintf("Error running effect %s: %s", effect.Name(), err))
			continue
		}
		if message != "" {
			messages = append(messages, message)
		}
	}

	return messages
}

func runEffect(ctx context.Context, effect Effect, event *Event) (message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return effect.Run(ctx, event)
}
