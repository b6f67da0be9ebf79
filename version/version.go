// Package version holds the release version of the mcmc module and the rule for which stored
// sampler runs it can read back.
package version

import (
	"github.com/blang/semver"
	"github.com/pkg/errors"
)

// Version is the current version of this repo.
var Version semver.Version

const (
	versionString = "0.1.0"
	isSnapshot    = true
)

var snapshot = semver.PRVersion{VersionStr: "snapshot"}

func init() {
	Version = current(versionString, isSnapshot)
}

func current(v string, snap bool) semver.Version {
	parsed := semver.MustParse(v)
	if snap {
		parsed.Pre = []semver.PRVersion{snapshot}
	}
	return parsed
}

// CanRead returns whether a history stored by the given version can be decoded by this version.
// Record encodings only change across major versions; before 1.0.0 they may change across minor
// versions.
func CanRead(stored string) (bool, error) {
	return canRead(Version, stored)
}

func canRead(running semver.Version, stored string) (bool, error) {
	sv, err := semver.Parse(stored)
	if err != nil {
		return false, errors.Wrapf(err, "parsing stored version %q", stored)
	}
	if sv.Major != running.Major {
		return false, nil
	}
	if running.Major == 0 && sv.Minor != running.Minor {
		return false, nil
	}
	return true, nil
}
