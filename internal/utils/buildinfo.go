package utils

import (
	"runtime/debug"
)

const (
	unknownVersion = "unknown"
	develVersion   = "(devel)"
)

// Version is set at link time with -ldflags "-X github.com/temirov/dirlisting/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion returns the linked version, then the module version from
// the Go build info, then the VCS revision recorded by the Go toolchain.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	var revision string
	var modified bool
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		return revision + "-dirty"
	}
	return revision
}
