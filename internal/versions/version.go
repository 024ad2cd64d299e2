// Package versions exposes the build information of the frs-sync binary.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const unknown = "unknown"

// Set at link time with -ldflags "-X github.com/frsworks/frs-sync/internal/versions.Version=..."
var (
	// Version is the release version
	Version = "dev"

	// Commit is the git revision the binary was built from
	Commit = unknown

	// BuildDate is the RFC3339 build timestamp
	BuildDate = unknown
)

// Info describes a build
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// String renders the info on one line
func (i Info) String() string {
	return fmt.Sprintf("frs-sync %s (commit %s, built %s, %s %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}

// GetVersionInfo returns the build information of the running binary
func GetVersionInfo() Info {
	return resolve(Version, Commit, BuildDate, readVCS)
}

// readVCS returns the VCS revision and time embedded by the go tool
func readVCS() (revision, modified string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			modified = s.Value
		}
	}
	return revision, modified
}

func resolve(version, commit, buildDate string, vcs func() (string, string)) Info {
	if strings.HasPrefix(version, "dev") && vcs != nil {
		revision, modified := vcs()
		if commit == unknown && revision != "" {
			commit = revision
		}
		if buildDate == unknown && modified != "" {
			buildDate = modified
		}
	}

	if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
		buildDate = t.UTC().Format("2006-01-02 15:04:05 MST")
	}

	if version == "dev" {
		version = fmt.Sprintf("dev-%.8s", commit)
	}

	return Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
