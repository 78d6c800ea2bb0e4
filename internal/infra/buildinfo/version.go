// Package buildinfo reports the version of the nbdb binary.
//
// Version, Commit and BuildTime are injected with ldflags:
//
//	go build -ldflags "-X github.com/PerchunPak/nonbloat-db/internal/infra/buildinfo.Version=v1.0.0"
//
// When they are not, Get falls back to the module and VCS data that the
// Go toolchain embeds in the binary.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables (set via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
				if len(info.Commit) > 12 {
					info.Commit = info.Commit[:12]
				}
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// String returns a one-line version string.
func String() string {
	i := Get()
	return fmt.Sprintf("%s (commit: %s, built: %s, %s %s)", i.Version, i.Commit, i.BuildTime, i.GoVersion, i.Platform)
}
