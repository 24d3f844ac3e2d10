package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/stretchr/testify/suite"
)

type RunManagerTestSuite struct {
	suite.Suite
	tempDir string
	logger  *logger.Logger
	start   time.Time
}

func TestRunManagerTestSuite(t *testing.T) {
	suite.Run(t, new(RunManagerTestSuite))
}

func (s *RunManagerTestSuite) SetupSuite() {
	s.logger = logger.NewNopLogger()
	s.start = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func (s *RunManagerTestSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
}

func (s *RunManagerTestSuite) TestInitialize_FirstRun() {
	rm := NewRunManager(s.logger)
	s.Require().NoError(rm.Initialize(s.tempDir, s.start))

	s.Equal("run_1", rm.RunID())
	s.Equal(1, rm.RunNumber())
	s.Equal(filepath.Join(s.tempDir, "2026-03-14", "run_1"), rm.RunPath())
	s.Equal(s.start, rm.SessionStart())
	s.DirExists(rm.RunPath())
}

func (s *RunManagerTestSuite) TestInitialize_SkipsExistingRuns() {
	for _, name := range []string{"run_1", "run_2", "run_10", "notes"} {
		s.Require().NoError(os.MkdirAll(filepath.Join(s.tempDir, "2026-03-14", name), 0755))
	}

	rm := NewRunManager(s.logger)
	s.Require().NoError(rm.Initialize(s.tempDir, s.start))

	s.Equal("run_11", rm.RunID())
}

func (s *RunManagerTestSuite) TestInitialize_NewDateRestartsNumbering() {
	s.Require().NoError(os.MkdirAll(filepath.Join(s.tempDir, "2026-03-13", "run_4"), 0755))

	rm := NewRunManager(s.logger)
	s.Require().NoError(rm.Initialize(s.tempDir, s.start))

	s.Equal("run_1", rm.RunID())
}

func (s *RunManagerTestSuite) TestFilePath() {
	rm := NewRunManager(s.logger)
	s.Require().NoError(rm.Initialize(s.tempDir, s.start))

	s.Equal(filepath.Join(rm.RunPath(), SummaryFileName), rm.FilePath(SummaryFileName))
}

func (s *RunManagerTestSuite) TestListRunsAndDates() {
	for _, dir := range []string{"2026-03-14/run_2", "2026-03-14/run_10", "2026-03-14/run_1", "2026-03-12/run_1", "misc"} {
		s.Require().NoError(os.MkdirAll(filepath.Join(s.tempDir, dir), 0755))
	}

	rm := NewRunManager(s.logger)
	s.Require().NoError(rm.Initialize(s.tempDir, s.start))

	runs, err := ListRuns(s.tempDir, "2026-03-14")
	s.Require().NoError(err)
	s.Equal([]string{"run_1", "run_2", "run_10", "run_11"}, runs)

	missing, err := ListRuns(s.tempDir, "2020-01-01")
	s.Require().NoError(err)
	s.Empty(missing)

	dates, err := ListDates(s.tempDir)
	s.Require().NoError(err)
	s.Equal([]string{"2026-03-12", "2026-03-14"}, dates)

	none, err := ListDates(filepath.Join(s.tempDir, "absent"))
	s.Require().NoError(err)
	s.Empty(none)
}
