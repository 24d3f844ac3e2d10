package report

import (
	"path/filepath"
	"time"

	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/session"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"go.uber.org/zap"
)

// WriteRun exports the final state of a session into runPath: the three
// parquet files plus summary.yaml pointing at them.
func WriteRun(
	runPath string,
	tracker *Tracker,
	state types.SessionState,
	counters session.Counters,
	log *logger.Logger,
) (types.SessionSummary, error) {
	recorder, err := NewRecorder(log)
	if err != nil {
		return types.SessionSummary{}, err
	}

	defer func() {
		if err := recorder.Close(); err != nil {
			log.Warn("Failed to close recorder", zap.Error(err))
		}
	}()

	if err := recorder.Record(state); err != nil {
		return types.SessionSummary{}, err
	}

	paths, err := recorder.Export(runPath)
	if err != nil {
		return types.SessionSummary{}, err
	}

	summary := tracker.Finish(state, counters, time.Now().UTC())
	summary.CandlesFilePath = paths.Candles
	summary.MarkersFilePath = paths.Markers
	summary.LedgerFilePath = paths.Ledger

	if err := WriteSummary(filepath.Join(runPath, SummaryFileName), summary); err != nil {
		return types.SessionSummary{}, err
	}

	log.Info("Session report written", zap.String("path", runPath))

	return summary, nil
}
