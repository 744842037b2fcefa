package effects

import (
	"context"
	"errors"
	"regexp"
	"sync"

	"github.com/shipbot/internal/github"
	"github.com/shipbot/internal/qa"
)

type fakeHost struct {
	mu sync.Mutex

	pullRequests map[int]*github.PullRequest
	latest       *github.Release
	fileContents map[string]string
	notes        string

	createdReleases []github.CreateReleaseParams
	updatedBodies   map[int64]string
	renamedTitles   map[int]string

	latestErr error
	createErr error
	notesErr  error
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		pullRequests:  map[int]*github.PullRequest{},
		fileContents:  map[string]string{},
		updatedBodies: map[int64]string{},
		renamedTitles: map[int]string{},
	}
}

func (f *fakeHost) GetPullRequest(_ context.Context, _, _ string, number int) (*github.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pr, ok := f.pullRequests[number]
	if !ok {
		return nil, errors.New("pull request not found")
	}
	return pr, nil
}

func (f *fakeHost) AnyChangedFileMatches(_ context.Context, _, _ string, _ int, pattern *regexp.Regexp) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for path := range f.fileContents {
		if pattern.MatchString(path) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHost) UpdatePullRequestTitle(_ context.Context, _, _ string, number int, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renamedTitles[number] = title
	return nil
}

func (f *fakeHost) LatestRelease(context.Context, string, string) (*github.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.latestErr
}

func (f *fakeHost) CreateRelease(_ context.Context, _, _ string, params github.CreateReleaseParams) (*github.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdReleases = append(f.createdReleases, params)
	return &github.Release{ID: int64(len(f.createdReleases)), TagName: params.TagName, Name: params.Name, Body: params.Body}, nil
}

func (f *fakeHost) UpdateReleaseBody(_ context.Context, _, _ string, releaseID int64, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatedBodies[releaseID] = body
	return nil
}

func (f *fakeHost) GenerateReleaseNotes(context.Context, string, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notes, f.notesErr
}

func (f *fakeHost) FileContent(_ context.Context, _, _, path, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.fileContents[path]
	if !ok {
		return "", errors.New("file not found")
	}
	return content, nil
}

type fakeEngine struct {
	mu         sync.Mutex
	reconciled []int
	items      []qa.ChangelogItem
	itemsErr   error
	result     qa.Result
}

func (f *fakeEngine) Reconcile(_ context.Context, _, _ string, number int) qa.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconciled = append(f.reconciled, number)
	return f.result
}

func (f *fakeEngine) ChangelogItems(context.Context, string, string, int) ([]qa.ChangelogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items, f.itemsErr
}

type sentMessage struct {
	webhookURL  string
	messages    []string
	attachments []string
	passed      *bool
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, webhookURL string, messages, attachments []string, passed *bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{webhookURL: webhookURL, messages: messages, attachments: attachments, passed: passed})
	return nil
}
