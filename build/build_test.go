package build

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	t.Parallel()

	bi := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Path: "github.com/amp-labs/fetchsim", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "1a2b3c4d5e6f7a8b"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name    string
		version string
		bi      *debug.BuildInfo
		want    Info
	}{
		{
			name:    "ldflags version wins",
			version: "v1.0.0",
			bi:      bi,
			want: Info{
				Version:   "v1.0.0",
				GitCommit: "1a2b3c4d5e6f7a8b",
				GitDate:   "2026-10-01T12:00:00Z",
				Modified:  true,
				GoVersion: "go1.25.0",
			},
		},
		{
			name:    "module version when dev",
			version: "dev",
			bi:      bi,
			want: Info{
				Version:   "v0.3.1",
				GitCommit: "1a2b3c4d5e6f7a8b",
				GitDate:   "2026-10-01T12:00:00Z",
				Modified:  true,
				GoVersion: "go1.25.0",
			},
		},
		{
			name:    "devel module",
			version: "",
			bi:      &debug.BuildInfo{GoVersion: "go1.25.0", Main: debug.Module{Version: "(devel)"}},
			want:    Info{Version: "dev", GoVersion: "go1.25.0"},
		},
		{
			name: "no build info",
			want: Info{Version: "dev"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, fromBuildInfo(tt.version, tt.bi))
		})
	}
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dev", Info{Version: "dev"}.String())
	assert.Equal(t, "v1.0.0 (go1.25.0)", Info{Version: "v1.0.0", GoVersion: "go1.25.0"}.String())
	assert.Equal(t, "v1.0.0 (commit 1a2b3c4d-dirty, go1.25.0)", Info{
		Version:   "v1.0.0",
		GitCommit: "1a2b3c4d5e6f",
		Modified:  true,
		GoVersion: "go1.25.0",
	}.String())
}

func TestRead(t *testing.T) {
	t.Parallel()

	info := Read("v9.9.9")

	assert.Equal(t, "v9.9.9", info.Version)
	assert.NotEmpty(t, info.String())
}
