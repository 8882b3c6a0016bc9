// Package build holds version information set with -ldflags -X.
package build

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = "https://github.com/ItsNotGoodName/x-overlay"
)

var Current = newBuild(commit, date, version, repoURL)

type Build struct {
	Commit     string    `json:"commit,omitempty"`
	Version    string    `json:"version,omitempty"`
	Date       time.Time `json:"date,omitempty"`
	GoVersion  string    `json:"go_version,omitempty"`
	RepoURL    string    `json:"repo_url,omitempty"`
	ReleaseURL string    `json:"release_url,omitempty"`
}

func newBuild(commit, date, version, repoURL string) Build {
	b := Build{
		Commit:  commit,
		Version: version,
		RepoURL: repoURL,
	}
	b.Date, _ = time.Parse(time.RFC3339, date)

	if info, ok := debug.ReadBuildInfo(); ok {
		b.GoVersion = info.GoVersion
		// Fall back to the VCS stamp when ldflags were not set.
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.Commit == "" {
					b.Commit = s.Value
				}
			case "vcs.time":
				if b.Date.IsZero() {
					b.Date, _ = time.Parse(time.RFC3339, s.Value)
				}
			}
		}
	}

	if repoURL != "" && version != "dev" {
		b.ReleaseURL = repoURL + "/releases/tag/" + version
	}
	return b
}

func (b Build) String() string {
	if b.Commit == "" {
		return b.Version
	}
	commit := b.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", b.Version, commit)
}
