package version

// Version is the current version of the qbot client.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/joshua1code/Q-bot-FD/internal/version.Version=1.2.3"
// The value "main" indicates a development build.
var Version = "v0.3.0"

// GetVersion returns the current version of the client.
func GetVersion() string {
	return Version
}

// UserAgent returns the User-Agent sent with every request, e.g. "qbot/v0.3.0".
func UserAgent() string {
	return "qbot/" + Version
}
