// Package report writes the post-mortem of a trading session to a run folder.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	"go.uber.org/zap"
)

var (
	runPattern  = regexp.MustCompile(`^run_(\d+)$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// RunManager owns the folder layout of session reports:
//
//	{baseDir}/{YYYY-MM-DD}/run_N/
type RunManager struct {
	baseDir      string
	runID        string
	runNumber    int
	sessionStart time.Time
	date         string
	runPath      string
	mu           sync.Mutex
	logger       *logger.Logger
}

// NewRunManager creates a RunManager. Call Initialize before using it.
func NewRunManager(log *logger.Logger) *RunManager {
	return &RunManager{
		baseDir:      "",
		runID:        "",
		runNumber:    0,
		sessionStart: time.Time{},
		date:         "",
		runPath:      "",
		mu:           sync.Mutex{},
		logger:       log,
	}
}

// Initialize picks the next free run number for start's date under baseDir
// and creates the run folder.
func (m *RunManager) Initialize(baseDir string, start time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.baseDir = baseDir
	m.sessionStart = start
	m.date = start.Format("2006-01-02")

	runNumber, err := m.nextRunNumber()
	if err != nil {
		return err
	}

	m.runNumber = runNumber
	m.runID = fmt.Sprintf("run_%d", runNumber)
	m.runPath = filepath.Join(m.baseDir, m.date, m.runID)

	if err := os.MkdirAll(m.runPath, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to create run folder %s", m.runPath)
	}

	m.logger.Info("Report run initialized",
		zap.String("run_id", m.runID),
		zap.String("date", m.date),
		zap.String("path", m.runPath),
	)

	return nil
}

//nolint:funcorder // helper used by Initialize
func (m *RunManager) nextRunNumber() (int, error) {
	runs, err := listRuns(filepath.Join(m.baseDir, m.date))
	if err != nil {
		return 0, err
	}

	if len(runs) == 0 {
		return 1, nil
	}

	return runNumber(runs[len(runs)-1]) + 1, nil
}

// RunID returns the run folder name, e.g. "run_1".
func (m *RunManager) RunID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.runID
}

// RunNumber returns the numeric part of RunID.
func (m *RunManager) RunNumber() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.runNumber
}

// RunPath returns the run folder.
func (m *RunManager) RunPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.runPath
}

// SessionStart returns the time passed to Initialize.
func (m *RunManager) SessionStart() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sessionStart
}

// FilePath returns the path of filename inside the run folder.
func (m *RunManager) FilePath(filename string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return filepath.Join(m.runPath, filename)
}

// ListRuns returns the run folders of date under baseDir in run number order.
func ListRuns(baseDir, date string) ([]string, error) {
	return listRuns(filepath.Join(baseDir, date))
}

// ListDates returns every date folder under baseDir, oldest first.
func ListDates(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}

	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportReadFailed, "failed to read report directory", err)
	}

	dates := []string{}

	for _, entry := range entries {
		if entry.IsDir() && datePattern.MatchString(entry.Name()) {
			dates = append(dates, entry.Name())
		}
	}

	sort.Strings(dates)

	return dates, nil
}

func listRuns(datePath string) ([]string, error) {
	entries, err := os.ReadDir(datePath)
	if os.IsNotExist(err) {
		return []string{}, nil
	}

	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportReadFailed, "failed to read date directory", err)
	}

	runs := []string{}

	for _, entry := range entries {
		if entry.IsDir() && runPattern.MatchString(entry.Name()) {
			runs = append(runs, entry.Name())
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runNumber(runs[i]) < runNumber(runs[j])
	})

	return runs, nil
}

func runNumber(name string) int {
	matches := runPattern.FindStringSubmatch(name)
	if len(matches) != 2 {
		return 0
	}

	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}

	return n
}
