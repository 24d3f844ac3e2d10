package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()

	for _, key := range []string{
		"QBOT_LOCAL_DEV", "QBOT_API_URL", "QBOT_STREAM_URL", "QBOT_SESSION_COOKIE",
		"QBOT_BACKOFF_UNIT", "QBOT_LEDGER_RETENTION", "QBOT_REQUESTS_PER_SECOND",
	} {
		suite.T().Setenv(key, "")
	}
}

func (suite *ConfigTestSuite) writeFile(content string) string {
	path := filepath.Join(suite.dir, "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *ConfigTestSuite) TestDefaultUsesProductionHost() {
	cfg := Default()

	suite.Equal("https://qbot.mooo.com", cfg.APIBaseURL)
	suite.Equal("wss://qbot.mooo.com", cfg.StreamURL)
	suite.Equal(time.Second, cfg.BackoffUnit)
	suite.Equal(10, cfg.BackoffMaxUnits)
	suite.Equal(200, cfg.LedgerRetention)
	suite.NoError(cfg.Validate())
}

func (suite *ConfigTestSuite) TestDefaultLocalDev() {
	suite.T().Setenv("QBOT_LOCAL_DEV", "true")

	cfg := Default()
	suite.Equal("http://127.0.0.1:8000", cfg.APIBaseURL)
	suite.Equal("ws://127.0.0.1:8000", cfg.StreamURL)
}

func (suite *ConfigTestSuite) TestLoadWithoutFile() {
	cfg, err := Load("")
	suite.Require().NoError(err)
	suite.Equal(Default(), cfg)
}

func (suite *ConfigTestSuite) TestLoadYAML() {
	path := suite.writeFile(`
api_base_url: http://localhost:9000
stream_url: ws://localhost:9000
session_cookie: abc
backoff_unit: 250ms
ledger_retention: 50
`)

	cfg, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal("http://localhost:9000", cfg.APIBaseURL)
	suite.Equal("ws://localhost:9000", cfg.StreamURL)
	suite.Equal("abc", cfg.SessionCookie)
	suite.Equal(250*time.Millisecond, cfg.BackoffUnit)
	suite.Equal(50, cfg.LedgerRetention)
	// Untouched keys keep their defaults.
	suite.Equal(DefaultStreamPath, cfg.StreamPath)
}

func (suite *ConfigTestSuite) TestEnvOverridesYAML() {
	path := suite.writeFile("ledger_retention: 50\n")

	suite.T().Setenv("QBOT_LEDGER_RETENTION", "25")
	suite.T().Setenv("QBOT_BACKOFF_UNIT", "2")
	suite.T().Setenv("QBOT_SESSION_COOKIE", "from-env")
	suite.T().Setenv("QBOT_REQUESTS_PER_SECOND", "0.5")

	cfg, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal(25, cfg.LedgerRetention)
	suite.Equal(2*time.Second, cfg.BackoffUnit)
	suite.Equal("from-env", cfg.SessionCookie)
	suite.InDelta(0.5, cfg.RequestsPerSecond, 1e-9)
}

func (suite *ConfigTestSuite) TestLoadErrors() {
	tests := []struct {
		name     string
		yaml     string
		env      map[string]string
		wantCode errors.ErrorCode
	}{
		{
			name:     "malformed yaml",
			yaml:     "ledger_retention: [",
			wantCode: errors.ErrCodeConfigLoadFailed,
		},
		{
			name:     "invalid url",
			yaml:     "api_base_url: not a url\n",
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
		{
			name:     "stream path without slash",
			yaml:     "stream_path: ws\n",
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
		{
			name:     "zero retention",
			yaml:     "ledger_retention: 0\n",
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
		{
			name:     "bad env integer",
			env:      map[string]string{"QBOT_LEDGER_RETENTION": "many"},
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
		{
			name:     "bad env duration",
			env:      map[string]string{"QBOT_BACKOFF_UNIT": "soon"},
			wantCode: errors.ErrCodeInvalidConfiguration,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			for k, v := range tc.env {
				suite.T().Setenv(k, v)
			}

			path := ""
			if tc.yaml != "" {
				path = suite.writeFile(tc.yaml)
			}

			_, err := Load(path)
			suite.Require().Error(err)
			suite.Equal(tc.wantCode, errors.GetCode(err))
		})
	}
}

func (suite *ConfigTestSuite) TestMissingFile() {
	_, err := Load(filepath.Join(suite.dir, "missing.yaml"))
	suite.Equal(errors.ErrCodeConfigLoadFailed, errors.GetCode(err))
}

func (suite *ConfigTestSuite) TestValidateReportsFieldNames() {
	cfg := Default()
	cfg.BackoffMaxUnits = 0

	err := cfg.Validate()
	suite.Require().Error(err)
	suite.Contains(err.Error(), "backoff_max_units")
}

func (suite *ConfigTestSuite) TestDerivedConfigs() {
	cfg := Default()
	cfg.SessionCookie = "c"

	suite.Equal(cfg.APIBaseURL, cfg.API().BaseURL)
	suite.Equal("c", cfg.API().SessionCookie)
	suite.Equal(cfg.StreamURL, cfg.Stream().BaseURL)
	suite.Equal(cfg.BackoffUnit, cfg.Stream().BackoffUnit)
	suite.Contains(cfg.Stream().UserAgent, "qbot/")
	suite.Equal(cfg.LedgerRetention, cfg.Session().LedgerRetention)
}

func (suite *ConfigTestSuite) TestSchema() {
	schema, err := Schema()
	suite.Require().NoError(err)

	var parsed map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &parsed))
	suite.Equal("qbot-config", parsed["title"])

	properties, ok := parsed["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "api_base_url")
	suite.Contains(properties, "ledger_retention")
}
