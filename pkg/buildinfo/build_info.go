package buildinfo

import (
	"fmt"
	"runtime"
	"strconv"
	"time"
)

// These variables should be initialized by ldflags
// Times should be the string representation of a Unix (epoch) time, i.e.
// the output of `date '+%s'`.
var (
	gitDescribe string
	gitCommit   string
	unixTime    string
)

const unknown = "unknown"

// Spec represents the build info for the running binary
type Spec struct {
	// GitDescribe is the git describe for this build
	// It should be a clean git tag for a real release
	GitDescribe string `json:"git_describe"`
	// GitCommit is the git commit for this build
	GitCommit string `json:"git_commit"`
	// Timestamp is the Unix (epoch) time when the build occurred
	Timestamp time.Time `json:"timestamp"`
	// GoVersion is the version of Go the binary was built with
	GoVersion string `json:"go_version"`
	// Platform is the GOOS/GOARCH pair the binary was built for
	Platform string `json:"platform"`
}

var buildInfo = newSpec(gitDescribe, gitCommit, unixTime)

// newSpec builds a Spec from raw ldflags values. Strings that were not
// properly initialized will be set to a dummy value. Times that were not
// properly initialized will use the zero Unix time.
func newSpec(describe, commit, timestamp string) Spec {
	s := Spec{
		GitDescribe: describe,
		GitCommit:   commit,
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
	}

	if s.GitDescribe == "" {
		s.GitDescribe = unknown
	}

	if s.GitCommit == "" {
		s.GitCommit = unknown
	}

	secs, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		secs = 0
	}
	s.Timestamp = time.Unix(secs, 0).UTC()

	return s
}

// Get returns a copy of the build info
func Get() Spec {
	return buildInfo
}

// String returns a string representation of the build info
func String() string {
	return buildInfo.String()
}

func (s Spec) String() string {
	return fmt.Sprintf("%s (%s) built @ %v with %s for %s",
		s.GitDescribe, s.GitCommit, s.Timestamp.Format(time.RFC3339), s.GoVersion, s.Platform)
}
