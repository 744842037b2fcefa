package qa

import (
	"fmt"
	"strings"

	"github.com/shipbot/internal/shortcut"
)

// Status indicators rendered next to each story on production-tier PRs.
const (
	IndicatorReady    = "✅"
	IndicatorNotReady = "🚫"
	IndicatorShipped  = "🚢"
)

// ChangelogItem binds a resolved story to its rendering context. Indicator
// is empty when the PR does not target a production-tier branch.
type ChangelogItem struct {
	Indicator string
	StoryID   string // "sc-<id>"
	StoryURL  string
	StoryName string
	Story     *shortcut.Story
	Shipped   bool
}

// newChangelogItem derives the rendering view for one story. The indicator
// is assigned only on production-tier: shipped wins over workflow state.
func newChangelogItem(story *shortcut.Story, storyURL string, shipped, production bool, readyStateID int64) ChangelogItem {
	item := ChangelogItem{
		StoryID:   fmt.Sprintf("sc-%d", story.ID),
		StoryURL:  storyURL,
		StoryName: story.Name,
		Story:     story,
		Shipped:   shipped,
	}

	if production {
		switch {
		case shipped:
			item.Indicator = IndicatorShipped
		case story.WorkflowStateID == readyStateID:
			item.Indicator = IndicatorReady
		default:
			item.Indicator = IndicatorNotReady
		}
	}

	return item
}

// FormatChangelog renders the changelog block, one line per story, wrapped
// in the start/end markers. Zero items yields the empty string so the
// caller omits the section entirely rather than rendering empty markers.
func FormatChangelog(items []ChangelogItem) string {
	if len(items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		link := fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>:`,
			item.StoryURL, item.StoryID)
		fields := []string{item.Indicator, link, item.StoryName}
		if item.Indicator == "" {
			fields = fields[1:]
		}
		lines = append(lines, strings.Join(fields, " "))
	}

	return strings.Join([]string{ChangelogStartMarker, strings.Join(lines, "\n"), ChangelogEndMarker}, "\n")
}

// ShippedNotice renders the warning line listing already-shipped stories,
// or the empty string when none are shipped.
func ShippedNotice(items []ChangelogItem) string {
	var shipped []string
	for _, item := range items {
		if item.Shipped {
			shipped = append(shipped, item.StoryID)
		}
	}
	if len(shipped) == 0 {
		return ""
	}
	return "**Stories " + strings.Join(shipped, ", ") + " have already been shipped. Test these stories before merging.**"
}

// SlackChangelog renders the story list as a Slack mrkdwn code block, or
// the empty string when there are no items.
func SlackChangelog(items []ChangelogItem) string {
	if len(items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("<%s|%s>: %s", item.StoryURL, item.StoryID, item.StoryName))
	}

	return strings.Join([]string{"```", strings.Join(lines, "\n"), "```"}, "\n")
}
