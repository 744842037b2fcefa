package shortcut

import (
	"regexp"
	"sort"
	"strconv"
)

var (
	branchRe  = regexp.MustCompile(`^sc-(\d+)/.+$`)
	messageRe = regexp.MustCompile(`sc-(\d+)/`)
	bracketRe = regexp.MustCompile(`(?i)\[sc-(\d+)\]`)
)

// ExtractStoryIDFromRef returns the story id embedded in a branch name of
// the form sc-<id>/<description>, or 0 when the branch is not a story branch.
func ExtractStoryIDFromRef(ref string) int64 {
	m := branchRe.FindStringSubmatch(ref)
	if m == nil {
		return 0
	}
	id, _ := strconv.ParseInt(m[1], 10, 64)
	return id
}

// ExtractStoryIDsFromCommitMessage returns every story id referenced in a
// commit message: the first sc-<id>/ occurrence (merge commits carry the
// source branch name) plus every [sc-<id>] inline marker.
func ExtractStoryIDsFromCommitMessage(message string) []int64 {
	var ids []int64

	if m := messageRe.FindStringSubmatch(message); m != nil {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		ids = append(ids, id)
	}

	for _, m := range bracketRe.FindAllStringSubmatch(message, -1) {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		ids = append(ids, id)
	}

	return ids
}

// ExtractStoryIDs collects story ids from a head branch name and a list of
// commit messages, deduplicated and sorted ascending. Absence of matches
// yields an empty result; ordering is only a rendering convenience.
func ExtractStoryIDs(headRef string, messages []string) []int64 {
	seen := make(map[int64]bool)

	if id := ExtractStoryIDFromRef(headRef); id != 0 {
		seen[id] = true
	}

	for _, message := range messages {
		for _, id := range ExtractStoryIDsFromCommitMessage(message) {
			seen[id] = true
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}
