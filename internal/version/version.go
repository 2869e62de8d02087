// Package version reports the build version of achievebot.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is set at build time with -ldflags "-X .../version.Version=v1.2.3".
	// Falls back to the module version embedded by go install.
	Version = "dev"
	// Commit is the VCS revision, filled from build info when available.
	Commit = ""
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	if Commit == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				Commit = s.Value[:7]
			}
		}
	}
}

// String renders the version line printed by the CLI.
func String() string {
	v := "achievebot " + Version
	if Commit != "" {
		v += " (" + Commit + ")"
	}
	return fmt.Sprintf("%s %s/%s", v, runtime.GOOS, runtime.GOARCH)
}
