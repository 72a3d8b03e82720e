package versioning

import "strings"

func isLabelRune(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '_' || r == '.' || r == '-'
}

// SanitizeLabel replaces every character outside [A-Za-z0-9_.-] with '_'.
// "." and ".." become "_" and "__" so a label is always a plain directory name.
func SanitizeLabel(name string) string {
	safe := strings.Map(func(r rune) rune {
		if isLabelRune(r) {
			return r
		}
		return '_'
	}, name)
	if safe == "." || safe == ".." {
		return strings.Repeat("_", len(safe))
	}
	return safe
}

// LabelForRef derives a label from a ref name by dropping refs/heads/, refs/tags/,
// refs/remotes/<remote>/ or <remote>/ and sanitizing the rest.
func LabelForRef(ref, remote string) string {
	name := ref
	prefixes := []string{"refs/heads/", "refs/tags/"}
	if remote != "" {
		prefixes = append(prefixes, "refs/remotes/"+remote+"/", remote+"/")
	}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			name = strings.TrimPrefix(name, p)
			break
		}
	}
	return SanitizeLabel(name)
}
