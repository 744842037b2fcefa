package qa

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestStripGeneratedContent(t *testing.T) {
	body := "**Stories sc-1, sc-2 have already been shipped. Test these stories before merging.**\n\n" +
		ChangelogStartMarker + "\n✅ sc-1: one\n" + ChangelogEndMarker + "\n\n" +
		MappingNotice + "\n\n" +
		"My own description."

	assert.Equal(t, "My own description.", StripGeneratedContent(body))
}

func TestStripGeneratedContentAbsentRegions(t *testing.T) {
	// stripping is a no-op (modulo trim) when no generated regions exist
	assert.Equal(t, "Just a description.", StripGeneratedContent("Just a description.\n"))
	assert.Equal(t, "", StripGeneratedContent(""))
}

func TestStripGeneratedContentIdempotent(t *testing.T) {
	body := ChangelogStartMarker + "\n🚫 sc-9: x\n" + ChangelogEndMarker + "\n\nuser text"
	once := StripGeneratedContent(body)
	twice := StripGeneratedContent(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("strip not idempotent (-once +twice):\n%s", diff)
	}
}

func TestStripGeneratedContentKeepsOtherCodeBlocks(t *testing.T) {
	body := "```\nnot generated\n```\n\nmore text"
	assert.Equal(t, body, StripGeneratedContent(body))
}

func TestComposeBody(t *testing.T) {
	assert.Equal(t, "a\n\nb\n\nc", ComposeBody("a", "", "b", "c", ""))
	assert.Equal(t, "", ComposeBody("", "", ""))
	assert.Equal(t, "only", ComposeBody("", "only"))
}

func TestComposeThenStripRoundTrip(t *testing.T) {
	user := "Here is what I changed."
	composed := ComposeBody(
		"**Stories sc-4 have already been shipped. Test these stories before merging.**",
		FormatChangelog([]ChangelogItem{{Indicator: IndicatorShipped, StoryID: "sc-4", StoryURL: "u", StoryName: "n"}}),
		MappingNotice,
		user,
	)
	assert.Equal(t, user, StripGeneratedContent(composed))
}
