package model

import (
	"fmt"
	"strings"
	"time"
)

// Coordinate identifies a binary artifact: group:name:version[:classifier].
type Coordinate struct {
	Group      string
	Name       string
	Version    string
	Classifier string
}

// ParseCoordinate accepts group:name:version or
// group:name:version:classifier.
func ParseCoordinate(text string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 && len(parts) != 4 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
	}

	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, " /\\") {
			return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
		}
	}

	c := Coordinate{Group: parts[0], Name: parts[1], Version: parts[2]}
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}

	return c, nil
}

func (c Coordinate) String() string {
	s := c.Group + ":" + c.Name + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}

	return s
}

// FileName is the artifact file name in the repository layout.
func (c Coordinate) FileName() string {
	base := c.Name + "-" + c.Version
	if c.Classifier != "" {
		base += "-" + c.Classifier
	}

	return base + ".jar"
}

// RelPath is the slash-separated repository path of the artifact.
func (c Coordinate) RelPath() string {
	return strings.ReplaceAll(c.Group, ".", "/") + "/" + c.Name + "/" + c.Version + "/" + c.FileName()
}

// MirrorConfig is one artifact repository with optional basic-auth
// credentials.
type MirrorConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
}

// MirrorFailure records why one mirror could not serve an artifact.
type MirrorFailure struct {
	Mirror string
	Err    error
}

// FetchResult describes a fetched artifact.
type FetchResult struct {
	Coordinate Coordinate
	Path       Path
	Mirror     string
	SHA256     string
	Cached     bool
	Failures   []MirrorFailure
	Elapsed    time.Duration
}

// FetchError aggregates the failure of every mirror for one artifact.
type FetchError struct {
	Coordinate Coordinate
	Failures   []MirrorFailure
}

func (e *FetchError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s", ErrArtifactFetchFailed, e.Coordinate)

	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; %s: %v", f.Mirror, f.Err)
	}

	return b.String()
}

// Unwrap exposes the sentinel and every mirror cause to errors.Is/As.
func (e *FetchError) Unwrap() []error {
	errs := []error{ErrArtifactFetchFailed}
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}

	return errs
}

// LockFile is the on-disk record of resolved artifacts.
type LockFile struct {
	Version   int              `toml:"version"`
	Artifacts []LockedArtifact `toml:"artifact"`
}

// LockedArtifact pins one fetched artifact to its content hash.
type LockedArtifact struct {
	Coordinate string    `toml:"coordinate" yaml:"coordinate"`
	Path       string    `toml:"path" yaml:"path"`
	Mirror     string    `toml:"mirror" yaml:"mirror"`
	SHA256     string    `toml:"sha256" yaml:"sha256"`
	FetchedAt  time.Time `toml:"fetched_at" yaml:"fetched_at"`
}

// Lookup returns the pinned entry for coordinate, if any.
func (l *LockFile) Lookup(coordinate string) (LockedArtifact, bool) {
	for _, a := range l.Artifacts {
		if a.Coordinate == coordinate {
			return a, true
		}
	}

	return LockedArtifact{}, false
}

// Put inserts or replaces the entry for a.Coordinate, keeping order.
func (l *LockFile) Put(a LockedArtifact) {
	for i := range l.Artifacts {
		if l.Artifacts[i].Coordinate == a.Coordinate {
			l.Artifacts[i] = a
			return
		}
	}

	l.Artifacts = append(l.Artifacts, a)
}
