package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// Format versions are encoded as major*1e6 + minor*1e3 + patch.
const (
	// Version100 is the first released state file format.
	Version100 = 1_000_000
	// Version110 added block handling: input samples, per-block QC thresholds
	// and PCA block correction.
	Version110 = 1_001_000
	// LatestVersion is the newest format the validators understand.
	LatestVersion = Version110
)

// SupportedVersion reports whether version is one of the known formats.
func SupportedVersion(version int) bool {
	return version == Version100 || version == Version110
}

// ParseVersion accepts an encoded integer ("1001000") or a semantic version
// with or without the leading v ("1.1.0", "v1.1").
func ParseVersion(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Wrap(ErrBadVersion, "empty version")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, errors.Wrapf(ErrBadVersion, "%q", s)
		}
		return n, nil
	}

	v := s
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return 0, errors.Wrapf(ErrBadVersion, "%q", s)
	}

	var major, minor, patch int
	if _, err := fmt.Sscanf(semver.Canonical(v), "v%d.%d.%d", &major, &minor, &patch); err != nil {
		return 0, errors.Wrapf(ErrBadVersion, "%q: %v", s, err)
	}
	if minor >= 1000 || patch >= 1000 {
		return 0, errors.Wrapf(ErrBadVersion, "%q: component out of range", s)
	}

	return major*1_000_000 + minor*1_000 + patch, nil
}

// FormatVersion renders an encoded version as "major.minor.patch".
func FormatVersion(version int) string {
	return fmt.Sprintf("%d.%d.%d", version/1_000_000, version/1_000%1_000, version%1_000)
}
