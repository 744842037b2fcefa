package effects

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shipbot/internal/gitflow"
	"github.com/shipbot/internal/qa"
)

var mergeCommitRe = regexp.MustCompile(`Merge pull request #(\d+) from`)

// NotifyDeployment announces pushes to staging and production branches in
// the team chat, including the story changelog of the merged PR when the
// push came from one.
type NotifyDeployment struct {
	engine        QAEngine
	host          HostAPI
	notifier      Notifier
	stagingURL    string
	productionURL string
}

// NewNotifyDeployment constructs the effect. An empty webhook URL disables
// notifications for that tier.
func NewNotifyDeployment(engine QAEngine, host HostAPI, notifier Notifier, stagingURL, productionURL string) *NotifyDeployment {
	return &NotifyDeployment{
		engine:        engine,
		host:          host,
		notifier:      notifier,
		stagingURL:    stagingURL,
		productionURL: productionURL,
	}
}

func (e *NotifyDeployment) Name() string { return "notify-deployment" }

func (e *NotifyDeployment) ShouldRun(event *Event) bool {
	if event.Kind != KindPush || event.Push.HeadCommit == nil {
		return false
	}
	branch := event.Push.Branch()
	return gitflow.IsStagingBranch(branch) || gitflow.IsProductionBranch(branch)
}

func (e *NotifyDeployment) Run(ctx context.Context, event *Event) (string, error) {
	branch := event.Push.Branch()
	webhookURL := e.stagingURL
	if gitflow.IsProductionBranch(branch) {
		webhookURL = e.productionURL
	}
	if webhookURL == "" {
		return "No deployment webhook configured for " + branch, nil
	}

	owner, repo := event.Owner(), event.Repo()
	head := event.Push.HeadCommit
	title := fmt.Sprintf("Releasing *%s*", repo)

	number := mergedPRNumber(head.Message)
	if number == 0 {
		messages := []string{
			title,
			fmt.Sprintf("*<%s|%s (%s)>*", head.URL, firstLine(head.Message), shortHash(head.ID)),
		}
		if err := e.notifier.Send(ctx, webhookURL, messages, nil, nil); err != nil {
			return "", err
		}
		return fmt.Sprintf("Notified deployment of %s to %s", shortHash(head.ID), branch), nil
	}

	url := head.URL
	commitTitle := firstLine(head.Message)
	pr, err := e.host.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		log.Error().Err(err).Str("repo", repo).Int("pr", number).Msg("Failed to fetch deployed PR")
	} else {
		url = pr.HTMLURL
		commitTitle = pr.Title
	}

	messages := []string{
		title,
		fmt.Sprintf("*<%s|%s (%s)>*", url, commitTitle, shortHash(head.ID)),
	}

	items, err := e.engine.ChangelogItems(ctx, owner, repo, number)
	if err != nil {
		log.Error().Err(err).Str("repo", repo).Int("pr", number).Msg("Failed to build deployment changelog")
	}
	if changelog := qa.SlackChangelog(items); changelog != "" {
		messages = append(messages, "\n"+changelog)
	}

	mappingChanged, err := e.host.AnyChangedFileMatches(ctx, owner, repo, number, qa.MappingFilePattern)
	if err != nil {
		log.Error().Err(err).Str("repo", repo).Int("pr", number).Msg("Failed to scan deployed PR files")
	}
	if mappingChanged {
		messages = append(messages, "\n"+qa.MappingNotice)
	}

	if err := e.notifier.Send(ctx, webhookURL, messages, nil, nil); err != nil {
		return "", err
	}
	return fmt.Sprintf("Notified deployment of PR #%d to %s", number, branch), nil
}

func mergedPRNumber(message string) int {
	m := mergeCommitRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	number, _ := strconv.Atoi(m[1])
	return number
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}

func shortHash(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
