package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
)

// HeaderName is the response header the server reports its API version in.
const HeaderName = "X-Qbot-Version"

// CheckServerCompatibility checks if the client can talk to a server of the given API version.
// Returns nil if compatible, an ErrCodeVersionMismatch error if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - An empty server version is not checked
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
func CheckServerCompatibility(clientVersion, serverVersion string) error {
	clientVersion = strings.TrimPrefix(strings.TrimSpace(clientVersion), "v")
	serverVersion = strings.TrimPrefix(strings.TrimSpace(serverVersion), "v")

	if serverVersion == "" || clientVersion == "main" || serverVersion == "main" {
		return nil
	}

	clientSemver, err := semver.NewVersion(clientVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid client version '%s'", clientVersion)
	}

	serverSemver, err := semver.NewVersion(serverVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid server version '%s'", serverVersion)
	}

	if clientSemver.Major() != serverSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"major version mismatch: client is %d.x.x but server speaks %d.x.x",
			clientSemver.Major(), serverSemver.Major())
	}

	if clientSemver.Minor() != serverSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch,
			"minor version mismatch: client is %d.%d.x but server speaks %d.%d.x",
			clientSemver.Major(), clientSemver.Minor(),
			serverSemver.Major(), serverSemver.Minor())
	}

	return nil
}
