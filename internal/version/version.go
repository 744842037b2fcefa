// Package version implements release version parsing and bumping.
//
// Tag names may carry an alphabetic prefix or suffix around the dotted
// numeric core (v1.2.3, r10b). Bumping a component truncates everything
// below it, so a minor bump of 1.2.3 yields 1.3, not 1.3.0.
package version

import (
	"regexp"
	"strconv"
	"strings"
)

// BumpKey identifies which version component to increment.
type BumpKey string

const (
	BumpMajor BumpKey = "major"
	BumpMinor BumpKey = "minor"
	BumpPatch BumpKey = "patch"
)

// FallbackBumpKey is used when neither a label nor a per-repo default applies.
const FallbackBumpKey = BumpMinor

var versionLabelNames = map[BumpKey]string{
	BumpMajor: "release-major",
	BumpMinor: "release-minor",
	BumpPatch: "release-patch",
}

// Parts is a tag name split into its alphabetic affixes and numeric core.
type Parts struct {
	Prefix  string
	Version string
	Suffix  string
}

var tagRe = regexp.MustCompile(`^([a-zA-Z]+)?(\d+(?:\.\d+)*)([a-zA-Z]+)?$`)

// Split parses a tag name into prefix, dotted version, and suffix.
// Unparseable input yields a zero version with no affixes.
func Split(tag string) Parts {
	m := tagRe.FindStringSubmatch(tag)
	if m == nil {
		return Parts{Version: "0"}
	}
	return Parts{Prefix: m[1], Version: m[2], Suffix: m[3]}
}

// Join reassembles the tag name from its parts.
func (p Parts) Join() string {
	return p.Prefix + p.Version + p.Suffix
}

// KeyFromLabels picks the bump key from PR label names. Explicit
// release-* labels win over the per-repo default; major beats minor
// beats patch when several are present.
func KeyFromLabels(labels []string, defaultKey BumpKey) BumpKey {
	has := func(key BumpKey) bool {
		for _, name := range labels {
			if name == versionLabelNames[key] {
				return true
			}
		}
		return false
	}

	switch {
	case has(BumpMajor):
		return BumpMajor
	case has(BumpMinor):
		return BumpMinor
	case has(BumpPatch):
		return BumpPatch
	}

	if defaultKey != "" {
		return defaultKey
	}
	return FallbackBumpKey
}

// Bump increments the named component of a dotted version string and
// truncates lower components. Missing components count as zero.
func Bump(version string, key BumpKey) string {
	fields := strings.Split(version, ".")
	nums := [3]int{}
	for i := 0; i < 3 && i < len(fields); i++ {
		n, _ := strconv.Atoi(fields[i])
		nums[i] = n
	}

	switch key {
	case BumpMajor:
		return strconv.Itoa(nums[0] + 1)
	case BumpMinor:
		return strconv.Itoa(nums[0]) + "." + strconv.Itoa(nums[1]+1)
	default:
		return strconv.Itoa(nums[0]) + "." + strconv.Itoa(nums[1]) + "." + strconv.Itoa(nums[2]+1)
	}
}

var gradleVersionRe = regexp.MustCompile(`versionName\s=\s"(.*)"`)

// GradleVersionName extracts the versionName value from a gradle build
// file. Returns the empty string when no assignment is found.
func GradleVersionName(content string) string {
	m := gradleVersionRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}
