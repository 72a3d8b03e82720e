// Package version reports the docversions build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is set via build-time ldflags in release builds:
// go build -ldflags "-X git.home.luguber.info/inful/docversions/internal/version.Version=v1.2.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version. Without ldflags the module
// version and VCS revision recorded by the Go toolchain are used when available.
func String() string {
	v, commit := Version, GitCommit
	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "unknown" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		if commit == "unknown" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 12 {
					commit = s.Value[:12]
				}
			}
		}
	}
	return fmt.Sprintf("docversions %s (commit %s, built %s)", v, commit, BuildTime)
}
