package report

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/joshua1code/Q-bot-FD/internal/logger"
	"github.com/joshua1code/Q-bot-FD/internal/types"
	"github.com/joshua1code/Q-bot-FD/pkg/errors"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// Parquet files written by Recorder.Export.
const (
	CandlesFileName = "candles.parquet"
	MarkersFileName = "markers.parquet"
	LedgerFileName  = "ledger.parquet"
)

// ExportPaths lists the files written by one export.
type ExportPaths struct {
	Candles string
	Markers string
	Ledger  string
}

// Recorder loads the final session state into an in-memory DuckDB database
// and exports each table to parquet.
type Recorder struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	mu     sync.Mutex
	logger *logger.Logger
}

// NewRecorder opens the in-memory database and creates its tables.
func NewRecorder(log *logger.Logger) (*Recorder, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderInitFailed, "failed to open DuckDB connection", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeRecorderInitFailed, "failed to connect to DuckDB", err)
	}

	r := &Recorder{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		mu:     sync.Mutex{},
		logger: log,
	}

	if err := r.createTables(); err != nil {
		db.Close()

		return nil, err
	}

	return r, nil
}

//nolint:funcorder // helper used by NewRecorder
func (r *Recorder) createTables() error {
	statements := []string{
		`CREATE TABLE candles (
			time BIGINT PRIMARY KEY,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE
		)`,
		`CREATE TABLE markers (
			seq INTEGER PRIMARY KEY,
			time BIGINT,
			side TEXT,
			price DOUBLE,
			label TEXT
		)`,
		`CREATE TABLE ledger (
			seq INTEGER PRIMARY KEY,
			time BIGINT,
			side TEXT,
			price DOUBLE,
			amount DOUBLE,
			pnl DOUBLE
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeRecorderInitFailed, "failed to create report table", err)
		}
	}

	return nil
}

// Record inserts the candles, markers and ledger of state. The ledger is
// stored oldest first.
func (r *Recorder) Record(state types.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return errors.New(errors.ErrCodeReportWriteFailed, "recorder is closed")
	}

	if len(state.Candles) > 0 {
		insert := r.sq.Insert("candles").Columns("time", "open", "high", "low", "close")
		for _, c := range state.Candles {
			insert = insert.Values(c.Time, c.Open, c.High, c.Low, c.Close)
		}

		if _, err := insert.RunWith(r.db).Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to insert candles", err)
		}
	}

	if len(state.Markers) > 0 {
		insert := r.sq.Insert("markers").Columns("seq", "time", "side", "price", "label")
		for i, m := range state.Markers {
			insert = insert.Values(i, m.Time, string(m.Side), m.Price, m.Label)
		}

		if _, err := insert.RunWith(r.db).Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to insert markers", err)
		}
	}

	if len(state.Ledger) > 0 {
		insert := r.sq.Insert("ledger").Columns("seq", "time", "side", "price", "amount", "pnl")
		for i := range state.Ledger {
			t := state.Ledger[len(state.Ledger)-1-i]
			insert = insert.Values(i, t.Time, string(t.Side), t.Price, t.Amount, t.PnL)
		}

		if _, err := insert.RunWith(r.db).Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to insert ledger", err)
		}
	}

	return nil
}

// Export writes every table to dir as parquet.
func (r *Recorder) Export(dir string) (ExportPaths, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return ExportPaths{}, errors.New(errors.ErrCodeReportWriteFailed, "recorder is closed")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return ExportPaths{}, errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create report directory", err)
	}

	paths := ExportPaths{
		Candles: filepath.Join(dir, CandlesFileName),
		Markers: filepath.Join(dir, MarkersFileName),
		Ledger:  filepath.Join(dir, LedgerFileName),
	}

	exports := []struct {
		query string
		path  string
	}{
		{query: "SELECT * FROM candles ORDER BY time", path: paths.Candles},
		{query: "SELECT * FROM markers ORDER BY seq", path: paths.Markers},
		{query: "SELECT * FROM ledger ORDER BY seq", path: paths.Ledger},
	}

	for _, export := range exports {
		_, err := r.db.Exec(fmt.Sprintf("COPY (%s) TO %s (FORMAT PARQUET)", export.query, quote(export.path)))
		if err != nil {
			return ExportPaths{}, errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to export %s", export.path)
		}
	}

	r.logger.Debug("Report exported", zap.String("dir", dir))

	return paths, nil
}

// ReadCandles reads a candles parquet file written by Export.
func (r *Recorder) ReadCandles(path string) ([]types.Candle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil, errors.New(errors.ErrCodeReportReadFailed, "recorder is closed")
	}

	rows, err := r.sq.
		Select("time", "open", "high", "low", "close").
		From(fmt.Sprintf("read_parquet(%s)", quote(path))).
		OrderBy("time ASC").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeReportReadFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	candles := []types.Candle{}

	for rows.Next() {
		var c types.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close); err != nil {
			return nil, errors.Wrap(errors.ErrCodeReportReadFailed, "failed to scan candle", err)
		}

		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportReadFailed, "failed to read candles", err)
	}

	return candles, nil
}

// ReadLedger reads a ledger parquet file written by Export, oldest first.
func (r *Recorder) ReadLedger(path string) ([]types.TradeEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil, errors.New(errors.ErrCodeReportReadFailed, "recorder is closed")
	}

	rows, err := r.sq.
		Select("time", "side", "price", "amount", "pnl").
		From(fmt.Sprintf("read_parquet(%s)", quote(path))).
		OrderBy("seq ASC").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeReportReadFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	trades := []types.TradeEvent{}

	for rows.Next() {
		var (
			t    types.TradeEvent
			side string
		)

		if err := rows.Scan(&t.Time, &side, &t.Price, &t.Amount, &t.PnL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeReportReadFailed, "failed to scan trade", err)
		}

		t.Side = types.Side(side)
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportReadFailed, "failed to read ledger", err)
	}

	return trades, nil
}

// Close releases the database.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}

	err := r.db.Close()
	r.db = nil

	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to close DuckDB connection", err)
	}

	return nil
}

// quote renders s as a SQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
