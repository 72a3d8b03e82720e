// Package versioning selects which git tags to build and derives filesystem-safe labels.
//
// A version spec is a comma-separated list of tokens. Each token is either an exact
// tag name or a semver range understood by github.com/Masterminds/semver/v3
// (">=1.0.0", "^2", "~1.4 || 1.6.x", ">=1.0.0 <2.0.0"). A tag is selected when it is a
// valid semantic version and satisfies at least one token. Range matching always
// includes pre-releases, so "v2.0.0-beta.1" satisfies ">=1.0.0".
package versioning
