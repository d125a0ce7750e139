package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// CheckCompatibility checks the engine_version a config asks for against the
// running engine version.
//
// Rules:
//   - An empty requirement, or "main" on either side, skips the check
//   - A constraint such as "^1.0" or ">= 1.2, < 2" must be satisfied
//   - A plain version must match the engine's major and minor; patch may differ
func CheckCompatibility(engineVersion, required string) error {
	engineVersion = strings.TrimPrefix(strings.TrimSpace(engineVersion), "v")
	required = strings.TrimSpace(required)

	if required == "" || required == "main" || engineVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	if requiredSemver, err := semver.NewVersion(strings.TrimPrefix(required, "v")); err == nil {
		if engineSemver.Major() != requiredSemver.Major() || engineSemver.Minor() != requiredSemver.Minor() {
			return errors.Newf(errors.ErrCodeVersionMismatch,
				"engine is %d.%d.x but config requires %d.%d.x",
				engineSemver.Major(), engineSemver.Minor(),
				requiredSemver.Major(), requiredSemver.Minor())
		}

		return nil
	}

	constraint, err := semver.NewConstraint(required)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version requirement '%s'", required)
	}

	if !constraint.Check(engineSemver) {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"engine version %s does not satisfy '%s'", engineSemver.String(), required)
	}

	return nil
}
