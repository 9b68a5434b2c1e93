// SPDX-License-Identifier: MIT
package build

import (
	"os"
	"runtime/debug"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origInfo    Info
	origRead    func() (*debug.BuildInfo, bool)
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origInfo = info
	origRead = readBuildInfo

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	info = origInfo
	readBuildInfo = origRead

	os.Exit(exitCode)
}

func reset() {
	buildName, buildTime, buildCommit, buildVersion = "", "", "", ""
	info = origInfo
}

func embedded(version string, settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main:     debug.Module{Path: "algcore", Version: version},
			Settings: settings,
		}, true
	}
}

func noBuildInfo() (*debug.BuildInfo, bool) { return nil, false }

func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		ld      [4]string // name, time, commit, version
		read    func() (*debug.BuildInfo, bool)
		want    Info
		wantErr bool
	}{
		{
			name:    "Nothing Known",
			read:    noBuildInfo,
			want:    origInfo,
			wantErr: true,
		},
		{
			name: "Devel Build Without Flags",
			read: embedded("(devel)",
				debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef"},
			),
			want: Info{
				Name: "algcore", Description: origInfo.Description,
				Time: "unknown", Commit: "0123456789abcdef", Version: "unknown",
			},
			wantErr: true,
		},
		{
			name: "Embedded Only",
			read: embedded("v0.2.1",
				debug.BuildSetting{Key: "vcs.revision", Value: "abcdef123"},
				debug.BuildSetting{Key: "vcs.time", Value: "2025-04-13T10:00:00Z"},
				debug.BuildSetting{Key: "vcs.modified", Value: "true"},
			),
			want: Info{
				Name: "algcore", Description: origInfo.Description,
				Time: "2025-04-13T10:00:00Z", Commit: "abcdef123", Version: "v0.2.1",
				Modified: true,
			},
		},
		{
			name: "Flags Win",
			ld:   [4]string{"mask", "2025-04-13", "fedcba", "v1.0.0"},
			read: embedded("v0.2.1",
				debug.BuildSetting{Key: "vcs.revision", Value: "abcdef123"},
			),
			want: Info{
				Name: "mask", Description: origInfo.Description,
				Time: "2025-04-13", Commit: "fedcba", Version: "v1.0.0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset()
			buildName, buildTime, buildCommit, buildVersion = tt.ld[0], tt.ld[1], tt.ld[2], tt.ld[3]
			readBuildInfo = tt.read

			err := Initialize()
			if (err != nil) != tt.wantErr {
				t.Errorf("Initialize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := Get(); got != tt.want {
				t.Errorf("Get() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	i := Info{Name: "algcore", Version: "v1.0.0", Commit: "0123456789abcdef", Time: "now", Modified: true}
	want := "algcore v1.0.0 (0123456789ab-dirty, built now)"
	if got := i.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
