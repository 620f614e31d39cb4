package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion is written by Export.
	CurrentSchemaVersion = "1.0.0"

	// SupportedSchema is the range of schema versions Parse accepts.
	SupportedSchema = ">=1.0.0, <2.0.0"
)

// ParseVersionConstraint parses a constraint such as ">=1.0.0, <2.0.0".
func ParseVersionConstraint(s string) (*semver.Constraints, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty version constraint")
	}
	c, err := semver.NewConstraint(s)
	if err != nil {
		return nil, fmt.Errorf("parsing version constraint %q: %w", s, err)
	}
	return c, nil
}

// SatisfiesConstraint reports whether version falls inside c.
func SatisfiesConstraint(version string, c *semver.Constraints) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", version, err)
	}
	return c.Check(v), nil
}

// IsValidVersion reports whether s parses as a semantic version.
func IsValidVersion(s string) bool {
	_, err := semver.NewVersion(s)
	return err == nil
}

func checkSchemaVersion(version string) error {
	c, err := ParseVersionConstraint(SupportedSchema)
	if err != nil {
		return err
	}
	if strings.TrimSpace(version) == "" {
		return fmt.Errorf("%w: schema_version is required", ErrUnsupportedSchema)
	}
	ok, err := SatisfiesConstraint(version, c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedSchema, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedSchema, version, SupportedSchema)
	}
	return nil
}
