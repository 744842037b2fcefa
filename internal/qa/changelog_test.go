package qa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shipbot/internal/shortcut"
)

const readyStateID = int64(500086341)

func TestIndicatorRule(t *testing.T) {
	ready := &shortcut.Story{ID: 1, Name: "a", WorkflowStateID: readyStateID}
	pending := &shortcut.Story{ID: 2, Name: "b", WorkflowStateID: 1}

	// production tier
	assert.Equal(t, IndicatorReady, newChangelogItem(ready, "u", false, true, readyStateID).Indicator)
	assert.Equal(t, IndicatorNotReady, newChangelogItem(pending, "u", false, true, readyStateID).Indicator)

	// shipped wins regardless of workflow state
	assert.Equal(t, IndicatorShipped, newChangelogItem(pending, "u", true, true, readyStateID).Indicator)
	assert.Equal(t, IndicatorShipped, newChangelogItem(ready, "u", true, true, readyStateID).Indicator)

	// off production there is no indicator
	assert.Equal(t, "", newChangelogItem(ready, "u", false, false, readyStateID).Indicator)
	assert.Equal(t, "", newChangelogItem(pending, "u", true, false, readyStateID).Indicator)
}

func TestFormatChangelog(t *testing.T) {
	items := []ChangelogItem{
		{Indicator: IndicatorReady, StoryID: "sc-3", StoryURL: "https://x/3", StoryName: "Fix login"},
		{Indicator: IndicatorNotReady, StoryID: "sc-9", StoryURL: "https://x/9", StoryName: "New feed"},
	}

	block := FormatChangelog(items)
	lines := strings.Split(block, "\n")
	assert.Equal(t, ChangelogStartMarker, lines[0])
	assert.Equal(t, ChangelogEndMarker, lines[len(lines)-1])
	assert.Equal(t, `✅ <a href="https://x/3" target="_blank" rel="noopener noreferrer">sc-3</a>: Fix login`, lines[1])
	assert.Equal(t, `🚫 <a href="https://x/9" target="_blank" rel="noopener noreferrer">sc-9</a>: New feed`, lines[2])
}

func TestFormatChangelogNoIndicator(t *testing.T) {
	items := []ChangelogItem{
		{StoryID: "sc-3", StoryURL: "https://x/3", StoryName: "Fix login"},
	}
	block := FormatChangelog(items)
	assert.Contains(t, block, `<a href="https://x/3" target="_blank" rel="noopener noreferrer">sc-3</a>: Fix login`)
	assert.NotContains(t, block, IndicatorReady)
}

func TestFormatChangelogEmpty(t *testing.T) {
	// no items: no block at all, never empty markers
	assert.Equal(t, "", FormatChangelog(nil))
}

func TestShippedNotice(t *testing.T) {
	items := []ChangelogItem{
		{StoryID: "sc-3", Shipped: true},
		{StoryID: "sc-5"},
		{StoryID: "sc-9", Shipped: true},
	}
	assert.Equal(t,
		"**Stories sc-3, sc-9 have already been shipped. Test these stories before merging.**",
		ShippedNotice(items))

	assert.Equal(t, "", ShippedNotice([]ChangelogItem{{StoryID: "sc-5"}}))
}

func TestShippedNoticeStripsBack(t *testing.T) {
	notice := ShippedNotice([]ChangelogItem{{StoryID: "sc-3", Shipped: true}})
	assert.Equal(t, "", StripGeneratedContent(notice))
}

func TestSlackChangelog(t *testing.T) {
	items := []ChangelogItem{
		{StoryID: "sc-3", StoryURL: "https://x/3", StoryName: "Fix login"},
	}
	assert.Equal(t, "```\n<https://x/3|sc-3>: Fix login\n```", SlackChangelog(items))
	assert.Equal(t, "", SlackChangelog(nil))
}
