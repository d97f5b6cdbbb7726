package wellknown

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a version number with two to four components.
// Build and Revision are -1 when undefined.
type Version struct {
	Major, Minor    int32
	Build, Revision int32
}

// NewVersion returns major.minor with undefined build and revision.
func NewVersion(major, minor int32) Version {
	return Version{Major: major, Minor: minor, Build: -1, Revision: -1}
}

// NewVersion3 returns major.minor.build.
func NewVersion3(major, minor, build int32) Version {
	return Version{Major: major, Minor: minor, Build: build, Revision: -1}
}

// NewVersion4 returns major.minor.build.revision.
func NewVersion4(major, minor, build, revision int32) Version {
	return Version{Major: major, Minor: minor, Build: build, Revision: revision}
}

// ParseVersion parses a dotted version of two to four non-negative components.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, fmt.Errorf("version %q must have 2 to 4 components", s)
	}

	comps := [4]int32{-1, -1, -1, -1}
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("version %q: invalid component %q", s, p)
		}
		comps[i] = int32(n)
	}

	return Version{Major: comps[0], Minor: comps[1], Build: comps[2], Revision: comps[3]}, nil
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d", v.Major, v.Minor)
	if v.Build < 0 {
		return s
	}
	s += fmt.Sprintf(".%d", v.Build)
	if v.Revision < 0 {
		return s
	}

	return s + fmt.Sprintf(".%d", v.Revision)
}
