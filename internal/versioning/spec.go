package versioning

import (
	"errors"
	"strings"
)

var (
	// ErrEmptySpec is returned by ParseSpec when no token remains after trimming.
	ErrEmptySpec = errors.New("version spec is empty")
	// ErrNoTagsMatched reports that an explicit, non-empty spec selected no tags.
	ErrNoTagsMatched = errors.New("no tags matched the version spec")
)

// Spec is a parsed version spec: an ordered, de-duplicated list of non-empty tokens.
type Spec struct {
	raw    string
	tokens []string
}

// ParseSpec splits raw on commas and trims each token. Empty tokens are dropped.
func ParseSpec(raw string) (Spec, error) {
	seen := make(map[string]struct{})
	var tokens []string
	for _, part := range strings.Split(raw, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return Spec{raw: raw}, ErrEmptySpec
	}
	return Spec{raw: raw, tokens: tokens}, nil
}

// Tokens returns a copy of the parsed tokens.
func (s Spec) Tokens() []string {
	out := make([]string, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Empty reports whether the spec requests no versions.
func (s Spec) Empty() bool { return len(s.tokens) == 0 }

func (s Spec) String() string { return strings.Join(s.tokens, ", ") }
