package stream

import (
	"testing"

	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type URLTestSuite struct {
	suite.Suite
}

func TestURLSuite(t *testing.T) {
	suite.Run(t, new(URLTestSuite))
}

func (suite *URLTestSuite) TestBuildURL() {
	tests := []struct {
		name      string
		base      string
		path      string
		sessionID string
		want      string
		wantErr   bool
	}{
		{
			name:      "wss with session",
			base:      "wss://qbot.mooo.com",
			path:      "/ws/trade",
			sessionID: "abc",
			want:      "wss://qbot.mooo.com/ws/trade?session_id=abc",
		},
		{
			name: "anonymous default stream",
			base: "wss://qbot.mooo.com/",
			path: "ws/trade",
			want: "wss://qbot.mooo.com/ws/trade",
		},
		{
			name:      "http becomes ws",
			base:      "http://127.0.0.1:8000",
			path:      "/ws/trade",
			sessionID: "a b",
			want:      "ws://127.0.0.1:8000/ws/trade?session_id=a+b",
		},
		{
			name:      "https becomes wss and keeps base path",
			base:      "https://example.com/api",
			path:      "/ws",
			sessionID: "x",
			want:      "wss://example.com/api/ws?session_id=x",
		},
		{
			name:    "unsupported scheme",
			base:    "ftp://example.com",
			path:    "/ws",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			got, err := BuildURL(tc.base, tc.path, tc.sessionID)
			if tc.wantErr {
				suite.Error(err)
				suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

				return
			}

			suite.Require().NoError(err)
			suite.Equal(tc.want, got)
		})
	}
}
