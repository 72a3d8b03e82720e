// Package testutil holds fixtures shared by docversions tests: throwaway git
// repositories with tagged releases and assertions on generated site trees.
package testutil
