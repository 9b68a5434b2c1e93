// SPDX-License-Identifier: MIT
//
// Package build reports the identity of the running binary. Release builds
// embed it with linker flags:
//
//	go build -ldflags "-X algcore/pkg/build.buildVersion=v0.3.0 \
//	    -X algcore/pkg/build.buildCommit=$(git rev-parse HEAD) \
//	    -X algcore/pkg/build.buildTime=$(date -u +%FT%TZ)"
//
// Fields left empty by the linker are filled from the module and VCS
// information the Go toolchain records in every binary.
package build

import (
	"fmt"
	"runtime/debug"
)

// Info describes one build.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
	Modified    bool // built from a dirty tree
}

func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s %s (%s, built %s)", i.Name, i.Version, commit, i.Time)
}

const unknown = "unknown"

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var readBuildInfo = debug.ReadBuildInfo

var info = Info{
	Name:        "algcore",
	Description: "Sleep-mask signal processing core",
	Time:        unknown,
	Commit:      unknown,
	Version:     unknown,
}

// Initialize merges linker flags and embedded build information into the
// value returned by Get. It fails only when neither source names a version.
func Initialize() error {
	if buildName != "" {
		info.Name = buildName
	}

	if bi, ok := readBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.time":
				info.Time = s.Value
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	if buildTime != "" {
		info.Time = buildTime
	}
	if buildCommit != "" {
		info.Commit = buildCommit
	}
	if buildVersion != "" {
		info.Version = buildVersion
	}

	if info.Version == unknown {
		return fmt.Errorf("build version is unknown")
	}
	return nil
}

// Get returns the current build information.
func Get() Info {
	return info
}
