package main

import (
	"runtime/debug"
	"strings"
)

// version is set at release time with -ldflags "-X main.version=...".
var version = "dev"

var readBuildInfo = debug.ReadBuildInfo

const shortRevisionLen = 7

func currentVersion() string {
	v := strings.TrimSpace(version)
	if v != "" && v != "dev" {
		return v
	}

	buildInfo, ok := readBuildInfo()
	if !ok || buildInfo == nil {
		return "dev"
	}

	if mv := strings.TrimSpace(buildInfo.Main.Version); mv != "" && mv != "(devel)" {
		return mv
	}
	if rev := vcsRevision(buildInfo); rev != "" {
		return "dev-" + rev
	}
	return "dev"
}

// vcsRevision returns the short commit a local build was made from, with
// a "-dirty" suffix for modified trees.
func vcsRevision(info *debug.BuildInfo) string {
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > shortRevisionLen {
		rev = rev[:shortRevisionLen]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}
