// Package build reports what binary is running: the version injected with
// -ldflags, plus the VCS details the Go toolchain embeds.
package build

import (
	"runtime/debug"
	"strings"
)

const unknownVersion = "dev"

// Info is the build metadata of the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"` //nolint:tagliatelle
	GitDate   string `json:"git_date,omitempty"`   //nolint:tagliatelle
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version,omitempty"` //nolint:tagliatelle
}

// Read returns the build info of the running binary. version is the value
// injected at link time; when empty or "dev" the module version is used.
func Read(version string) Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return fromBuildInfo(version, nil)
	}

	return fromBuildInfo(version, bi)
}

func fromBuildInfo(version string, bi *debug.BuildInfo) Info {
	info := Info{Version: version}

	if bi != nil {
		info.GoVersion = bi.GoVersion

		if info.Version == "" || info.Version == unknownVersion {
			if v := bi.Main.Version; v != "" && v != "(devel)" {
				info.Version = v
			}
		}

		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.GitCommit = setting.Value
			case "vcs.time":
				info.GitDate = setting.Value
			case "vcs.modified":
				info.Modified = setting.Value == "true"
			}
		}
	}

	if info.Version == "" {
		info.Version = unknownVersion
	}

	return info
}

// String renders the info for --version output, e.g.
// "v1.2.0 (commit 1a2b3c4d, go1.25.0)".
func (i Info) String() string {
	var details []string

	if i.GitCommit != "" {
		commit := i.GitCommit
		if len(commit) > 8 { //nolint:mnd
			commit = commit[:8]
		}

		if i.Modified {
			commit += "-dirty"
		}

		details = append(details, "commit "+commit)
	}

	if i.GoVersion != "" {
		details = append(details, i.GoVersion)
	}

	if len(details) == 0 {
		return i.Version
	}

	return i.Version + " (" + strings.Join(details, ", ") + ")"
}
