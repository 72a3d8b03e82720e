package versioning

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"git.home.luguber.info/inful/docversions/internal/logfields"
)

// Matcher resolves version specs against a list of tags.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher creates a Matcher. A nil logger falls back to slog.Default().
func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{logger: logger}
}

// token is one spec entry: its literal text plus the range it parses to, if any.
type token struct {
	text       string
	constraint *semver.Constraints
}

func (t token) matches(tag string, v *semver.Version) bool {
	if t.text == tag {
		return true
	}
	return t.constraint != nil && t.constraint.Check(v)
}

// Match returns the tags selected by raw, newest first.
//
// An empty or blank spec yields an empty result and no error; turning that into a
// failure is the caller's decision. Tags that are not semantic versions are skipped.
func (m *Matcher) Match(raw string, tags []string) ([]string, error) {
	spec, err := ParseSpec(raw)
	if errors.Is(err, ErrEmptySpec) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return m.MatchSpec(spec, tags), nil
}

// MatchSpec is Match for an already parsed spec.
func (m *Matcher) MatchSpec(spec Spec, tags []string) []string {
	tokens := m.compile(spec)

	seen := make(map[string]struct{}, len(tags))
	matched := make([]taggedVersion, 0, len(tags))
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}

		v, ok := ParseTag(tag)
		if !ok {
			m.logger.Debug("Skipping tag that is not a version", logfields.Tag(tag))
			continue
		}
		for _, tok := range tokens {
			if tok.matches(tag, v) {
				matched = append(matched, taggedVersion{tag: tag, version: v})
				break
			}
		}
	}

	sortTaggedDescending(matched)

	out := make([]string, len(matched))
	for i, tv := range matched {
		out[i] = tv.tag
	}
	return out
}

func (m *Matcher) compile(spec Spec) []token {
	tokens := make([]token, 0, len(spec.tokens))
	for _, text := range spec.tokens {
		c, err := semver.NewConstraint(text)
		if err != nil {
			m.logger.Debug("Version token is not a range, using exact match only",
				slog.String("token", text), logfields.Error(err))
			tokens = append(tokens, token{text: text})
			continue
		}
		c.IncludePrerelease = true
		tokens = append(tokens, token{text: text, constraint: c})
	}
	return tokens
}

// ParseTag parses a tag as a strict semantic version with an optional leading "v".
func ParseTag(tag string) (*semver.Version, bool) {
	v, err := semver.StrictNewVersion(strings.TrimPrefix(tag, "v"))
	if err != nil {
		return nil, false
	}
	return v, true
}

// IsVersionTag reports whether tag can ever be selected by a spec.
func IsVersionTag(tag string) bool {
	_, ok := ParseTag(tag)
	return ok
}

type taggedVersion struct {
	tag     string
	version *semver.Version
}

// sortTaggedDescending orders by semver precedence, highest first. Equal precedence
// (v1.0.0 and 1.0.0, differing build metadata) falls back to the tag name.
func sortTaggedDescending(tvs []taggedVersion) {
	sort.SliceStable(tvs, func(i, j int) bool {
		if c := tvs[i].version.Compare(tvs[j].version); c != 0 {
			return c > 0
		}
		return tvs[i].tag < tvs[j].tag
	})
}

// SortDescending sorts tags in place, semantic versions first (highest first) followed by
// every other tag in reverse lexical order.
func SortDescending(tags []string) {
	valid := make([]taggedVersion, 0, len(tags))
	var other []string
	for _, tag := range tags {
		if v, ok := ParseTag(tag); ok {
			valid = append(valid, taggedVersion{tag: tag, version: v})
		} else {
			other = append(other, tag)
		}
	}
	sortTaggedDescending(valid)
	sort.Sort(sort.Reverse(sort.StringSlice(other)))

	i := 0
	for _, tv := range valid {
		tags[i] = tv.tag
		i++
	}
	for _, tag := range other {
		tags[i] = tag
		i++
	}
}
