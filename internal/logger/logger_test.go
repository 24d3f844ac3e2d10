package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.Require().NoError(err)
	suite.NotNil(logger.Logger)
	suite.False(logger.Core().Enabled(zapcore.DebugLevel))
	suite.True(logger.Core().Enabled(zapcore.InfoLevel))
}

func (suite *LoggerTestSuite) TestNewDevelopmentLogger() {
	logger, err := NewDevelopmentLogger()
	suite.Require().NoError(err)
	suite.True(logger.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestNopLoggerDiscards() {
	logger := NewNopLogger()
	suite.False(logger.Core().Enabled(zapcore.ErrorLevel))
	suite.NoError(logger.Sync())
}

func (suite *LoggerTestSuite) TestSyncNilLogger() {
	logger := &Logger{Logger: nil}
	suite.NoError(logger.Sync())
}

func (suite *LoggerTestSuite) TestWithCarriesFields() {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := &Logger{Logger: zap.New(core)}

	child := logger.With(zap.String("session_id", "abc"))
	child.Info("Session started", zap.String("symbol", "BTC"))
	logger.Info("no fields")

	entries := logs.All()
	suite.Require().Len(entries, 2)
	suite.Equal("Session started", entries[0].Message)
	suite.Equal(map[string]any{"session_id": "abc", "symbol": "BTC"}, entries[0].ContextMap())
	suite.Empty(entries[1].ContextMap())
}
