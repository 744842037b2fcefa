package qa

import (
	"regexp"
	"strings"
)

// Markers delimiting the generated changelog block inside a PR description.
const (
	ChangelogStartMarker = "<!-- changelog-start -->"
	ChangelogEndMarker   = "<!-- changelog-end -->"
)

// MappingNotice is the fixed line added when a PR touches search mapping files.
const MappingNotice = "**Notice:** Elastic mappings has change. Ensure production Elastic is updated!"

// MappingFilePattern matches changed files that require the mapping notice.
var MappingFilePattern = regexp.MustCompile(`^src/config/elasticsearch/mappings/\w+\.json$`)

var (
	changelogBlockRe = regexp.MustCompile(`(?s)` +
		regexp.QuoteMeta(ChangelogStartMarker) + `.*?` + regexp.QuoteMeta(ChangelogEndMarker))
	mappingNoticeRe = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(MappingNotice) + `$`)
	shippedNoticeRe = regexp.MustCompile(
		`(?m)^\*\*Stories .+ have already been shipped\. Test these stories before merging\.\*\*$`)
)

// StripGeneratedContent removes every generated region from a PR body: the
// changelog block (markers inclusive), the mapping notice line, and the
// shipped-stories notice line. Absent regions are a no-op. The result is
// whitespace-trimmed, so repeated application is stable.
func StripGeneratedContent(body string) string {
	body = changelogBlockRe.ReplaceAllString(body, "")
	body = mappingNoticeRe.ReplaceAllString(body, "")
	body = shippedNoticeRe.ReplaceAllString(body, "")
	return strings.TrimSpace(body)
}

// ComposeBody joins the non-empty parts with a blank line, in the order
// given: shipped notice, changelog block, mapping notice, user remainder.
func ComposeBody(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n\n")
}
