package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStoryIDFromRef(t *testing.T) {
	assert.Equal(t, int64(42), ExtractStoryIDFromRef("sc-42/fix-bug"))
	assert.Equal(t, int64(0), ExtractStoryIDFromRef("sc-42"))
	assert.Equal(t, int64(0), ExtractStoryIDFromRef("feature/sc-42/fix-bug"))
	assert.Equal(t, int64(0), ExtractStoryIDFromRef("release"))
}

func TestExtractStoryIDsFromCommitMessage(t *testing.T) {
	assert.Equal(t, []int64{7},
		ExtractStoryIDsFromCommitMessage("Merge pull request #3 from Org/sc-7/fix-login"))

	// inline markers, multiple per message, case-insensitive prefix
	assert.Equal(t, []int64{9, 12},
		ExtractStoryIDsFromCommitMessage("fix [sc-9] and [SC-12]"))

	// ref form and markers combine
	assert.Equal(t, []int64{7, 9},
		ExtractStoryIDsFromCommitMessage("Merge pull request #3 from Org/sc-7/x [sc-9]"))

	assert.Empty(t, ExtractStoryIDsFromCommitMessage("unrelated commit"))
}

func TestExtractStoryIDs(t *testing.T) {
	ids := ExtractStoryIDs("sc-42/fix-bug", []string{
		"Merge pull request #7 from Org/sc-42/fix-bug",
		"unrelated",
	})
	assert.Equal(t, []int64{42}, ids)
}

func TestExtractStoryIDsDedupSort(t *testing.T) {
	ids := ExtractStoryIDs("sc-5/x", []string{
		"Merge pull request #1 from Org/sc-5/x",
		"[sc-9]",
		"[sc-5]",
	})
	assert.Equal(t, []int64{5, 9}, ids)
}

func TestExtractStoryIDsEmpty(t *testing.T) {
	ids := ExtractStoryIDs("feature-branch", []string{"no stories here"})
	assert.Empty(t, ids)

	assert.Empty(t, ExtractStoryIDs("", nil))
}
