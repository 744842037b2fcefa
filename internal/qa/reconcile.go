// Package qa implements the PR story/QA reconciliation engine: it resolves
// story references from a PR, classifies each story's QA readiness, rewrites
// the generated regions of the PR description, and keeps the untested label
// in sync with the aggregate result.
package qa

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/shipbot/internal/gitflow"
	"github.com/shipbot/internal/github"
	"github.com/shipbot/internal/shortcut"
)

// HostAPI is the subset of the GitHub client the engine needs.
type HostAPI interface {
	LabelAPI
	PullRequestDetails(ctx context.Context, owner, repo string, number int) (*github.PullRequestDetails, error)
	UpdatePullRequestBody(ctx context.Context, owner, repo string, number int, body string) error
	AnyChangedFileMatches(ctx context.Context, owner, repo string, number int, pattern *regexp.Regexp) (bool, error)
	SearchIssues(ctx context.Context, query string) ([]github.SearchItem, error)
}

// StoryAPI is the story tracker surface the engine needs.
type StoryAPI interface {
	FetchStory(ctx context.Context, id int64) *shortcut.Story
	StoryWebURL(id int64) string
}

// Result is the outcome of one reconciliation.
type Result struct {
	Ready    bool
	StoryIDs []int64
	NotReady []int64
}

// Engine coordinates story resolution, body rendering, and label state for
// one PR at a time. It holds no mutable state; every invocation rebuilds
// its view from the external APIs.
type Engine struct {
	host         HostAPI
	stories      StoryAPI
	labels       *LabelManager
	org          string
	readyStateID int64
}

// NewEngine constructs a reconciliation engine.
func NewEngine(host HostAPI, stories StoryAPI, org string, readyStateID int64) *Engine {
	return &Engine{
		host:         host,
		stories:      stories,
		labels:       NewLabelManager(host),
		org:          org,
		readyStateID: readyStateID,
	}
}

// Reconcile brings a PR's description and untested label in line with the
// current state of its referenced stories. Failures degrade rather than
// abort: an unreachable tracker marks stories not-ready, an unreachable PR
// fails safe to the label being present.
func (e *Engine) Reconcile(ctx context.Context, owner, repo string, number int) Result {
	e.labels.EnsureLabel(ctx, owner, repo)

	details, err := e.host.PullRequestDetails(ctx, owner, repo, number)
	if err != nil {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to get PR details")
		e.labels.AddIfMissing(ctx, owner, repo, number)
		return Result{Ready: false}
	}

	production := gitflow.IsProductionBranch(details.BaseRef)
	storyIDs := shortcut.ExtractStoryIDs(details.HeadRef, details.CommitMessages)

	if len(storyIDs) == 0 {
		log.Info().Str("repo", owner+"/"+repo).Int("pr", number).Msg("No stories referenced in PR")

		// Nothing to test: drop stale generated content and the label.
		cleaned := StripGeneratedContent(details.Body)
		if cleaned != strings.TrimSpace(details.Body) {
			if err := e.host.UpdatePullRequestBody(ctx, owner, repo, number, cleaned); err != nil {
				log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to strip PR body")
			}
		}
		e.labels.RemoveIfPresent(ctx, owner, repo, number)
		return Result{Ready: true, StoryIDs: []int64{}, NotReady: []int64{}}
	}

	log.Info().Str("repo", owner+"/"+repo).Int("pr", number).
		Ints64("stories", storyIDs).Msg("Found story references in PR")

	showMappingNotice, err := e.host.AnyChangedFileMatches(ctx, owner, repo, number, MappingFilePattern)
	if err != nil {
		log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to scan changed files")
		showMappingNotice = false
	}

	valid := e.fetchStories(ctx, storyIDs)

	if len(valid) == 0 {
		log.Warn().Str("repo", owner+"/"+repo).Int("pr", number).Msg("No referenced stories could be fetched")
		if production {
			e.labels.AddIfMissing(ctx, owner, repo, number)
		}
		return Result{Ready: false, StoryIDs: storyIDs, NotReady: storyIDs}
	}

	items := e.changelogItems(ctx, valid, production)

	mappingNotice := ""
	if showMappingNotice {
		mappingNotice = MappingNotice
	}
	newBody := ComposeBody(
		ShippedNotice(items),
		FormatChangelog(items),
		mappingNotice,
		StripGeneratedContent(details.Body),
	)

	// Updating the body re-triggers this webhook in some deployments;
	// skipping no-op writes keeps that loop from amplifying.
	if newBody != details.Body {
		if err := e.host.UpdatePullRequestBody(ctx, owner, repo, number, newBody); err != nil {
			log.Error().Err(err).Str("repo", owner+"/"+repo).Int("pr", number).Msg("Failed to update PR body")
		}
	}

	if !production {
		// Staging PRs are informational only, never QA-gated.
		return Result{Ready: true, StoryIDs: storyIDs, NotReady: []int64{}}
	}

	var notReady []int64
	for _, item := range items {
		if !item.Shipped && item.Story.WorkflowStateID != e.readyStateID {
			notReady = append(notReady, item.Story.ID)
		}
	}

	ready := len(notReady) == 0
	e.labels.Reconcile(ctx, owner, repo, number, !ready)

	if ready {
		log.Info().Str("repo", owner+"/"+repo).Int("pr", number).Msg("All stories ready to ship or already shipped")
		return Result{Ready: true, StoryIDs: storyIDs, NotReady: []int64{}}
	}

	log.Info().Str("repo", owner+"/"+repo).Int("pr", number).
		Ints64("not_ready", notReady).Msg("Stories not ready to ship")
	return Result{Ready: false, StoryIDs: storyIDs, NotReady: notReady}
}

// ChangelogItems resolves a PR's stories and returns their rendering view
// without touching the PR. Used by the deployment notifier.
func (e *Engine) ChangelogItems(ctx context.Context, owner, repo string, number int) ([]ChangelogItem, error) {
	details, err := e.host.PullRequestDetails(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	storyIDs := shortcut.ExtractStoryIDs(details.HeadRef, details.CommitMessages)
	if len(storyIDs) == 0 {
		return nil, nil
	}

	valid := e.fetchStories(ctx, storyIDs)
	if len(valid) == 0 {
		return nil, nil
	}

	return e.changelogItems(ctx, valid, gitflow.IsProductionBranch(details.BaseRef)), nil
}

// fetchStories resolves ids concurrently and drops the ones the tracker
// could not serve. Order of completion is irrelevant; results keep the
// request order and nils are filtered afterwards.
func (e *Engine) fetchStories(ctx context.Context, ids []int64) []*shortcut.Story {
	fetched := make([]*shortcut.Story, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			fetched[i] = e.stories.FetchStory(ctx, id)
		}(i, id)
	}
	wg.Wait()

	valid := make([]*shortcut.Story, 0, len(fetched))
	for _, story := range fetched {
		if story != nil {
			valid = append(valid, story)
		}
	}
	return valid
}

// changelogItems computes the shipped overlay for each story concurrently
// and derives the per-story rendering view.
func (e *Engine) changelogItems(ctx context.Context, stories []*shortcut.Story, production bool) []ChangelogItem {
	shipped := make([]bool, len(stories))

	var wg sync.WaitGroup
	for i, story := range stories {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			shipped[i] = e.storyShipped(ctx, id)
		}(i, story.ID)
	}
	wg.Wait()

	items := make([]ChangelogItem, 0, len(stories))
	for i, story := range stories {
		items = append(items, newChangelogItem(
			story, e.stories.StoryWebURL(story.ID), shipped[i], production, e.readyStateID))
	}
	return items
}

// storyShipped reports whether a story already reached production via a
// previously merged PR. Search failures count as not shipped.
func (e *Engine) storyShipped(ctx context.Context, storyID int64) bool {
	for _, branch := range gitflow.ProductionBranches {
		query := fmt.Sprintf("org:%s is:pr is:merged base:%s sc-%d", e.org, branch, storyID)
		items, err := e.host.SearchIssues(ctx, query)
		if err != nil {
			log.Error().Err(err).Int64("story", storyID).Str("base", branch).Msg("Shipped-status search failed")
			continue
		}
		if len(items) > 0 {
			return true
		}
	}
	return false
}

// PRRef identifies a pull request across repositories.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

var repositoryURLRe = regexp.MustCompile(`repos/([^/]+)/([^/]+)$`)

// SearchOpenProductionPRs finds every open PR targeting a production-tier
// branch that textually references the story. Per-branch search failures
// are logged and skipped; results are deduplicated.
func (e *Engine) SearchOpenProductionPRs(ctx context.Context, storyID int64) []PRRef {
	var refs []PRRef
	seen := make(map[string]bool)

	for _, branch := range gitflow.ProductionBranches {
		query := fmt.Sprintf("org:%s is:pr is:open base:%s sc-%d", e.org, branch, storyID)
		items, err := e.host.SearchIssues(ctx, query)
		if err != nil {
			log.Error().Err(err).Int64("story", storyID).Str("base", branch).Msg("Open PR search failed")
			continue
		}

		for _, item := range items {
			m := repositoryURLRe.FindStringSubmatch(item.RepositoryURL)
			if m == nil {
				continue
			}
			key := fmt.Sprintf("%s/%s#%d", m[1], m[2], item.Number)
			if seen[key] {
				continue
			}
			seen[key] = true
			refs = append(refs, PRRef{Owner: m[1], Repo: m[2], Number: item.Number})
		}
	}

	log.Info().Int64("story", storyID).Int("prs", len(refs)).Msg("Found open production PRs referencing story")
	return refs
}

// ReverifyStory re-runs reconciliation for every open production PR that
// references the story, concurrently and without ordering guarantees.
// Returns the number of PRs verified.
func (e *Engine) ReverifyStory(ctx context.Context, storyID int64) int {
	refs := e.SearchOpenProductionPRs(ctx, storyID)

	var wg sync.WaitGroup
	for _, ref := range refs {
		wg.Add(1)
		go func(ref PRRef) {
			defer wg.Done()
			e.Reconcile(ctx, ref.Owner, ref.Repo, ref.Number)
		}(ref)
	}
	wg.Wait()

	return len(refs)
}
