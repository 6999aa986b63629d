package utils

import (
	"runtime/debug"
)

const (
	unknownVersion       = "unknown"
	develVersion         = "(devel)"
	revisionSettingKey   = "vcs.revision"
	modifiedSettingKey   = "vcs.modified"
	shortRevisionLength  = 12
	dirtyRevisionSuffix  = "-dirty"
	revisionVersionLabel = "devel+"
)

// Version is set at link time with -ldflags "-X github.com/temirov/fcom/internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion reports the linked Version, then the module version
// recorded by go install, then the VCS revision stamped by go build.
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
	return versionFromSettings(buildInfo.Settings)
}

func versionFromSettings(settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, setting := range settings {
		switch setting.Key {
		case revisionSettingKey:
			revision = setting.Value
		case modifiedSettingKey:
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > shortRevisionLength {
		revision = revision[:shortRevisionLength]
	}
	if modified {
		revision += dirtyRevisionSuffix
	}
	return revisionVersionLabel + revision
}
