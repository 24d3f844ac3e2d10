package stream

import (
	"net/url"
	"strings"

	"github.com/joshua1code/Q-bot-FD/pkg/errors"
)

// SessionQueryParam is the query parameter carrying the session identifier.
const SessionQueryParam = "session_id"

// BuildURL joins base and path and adds the session identifier when there is one.
// An empty sessionID yields the anonymous default stream.
func BuildURL(base, path, sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid stream base URL %q", base)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported stream URL scheme %q", u.Scheme)
	}

	if path != "" {
		u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	}

	query := u.Query()
	if sessionID != "" {
		query.Set(SessionQueryParam, sessionID)
	} else {
		query.Del(SessionQueryParam)
	}

	u.RawQuery = query.Encode()

	return u.String(), nil
}
