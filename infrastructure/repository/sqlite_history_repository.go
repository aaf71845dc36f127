package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ca-srg/usagemon/domain"
	"github.com/ca-srg/usagemon/domain/entity"
	"github.com/ca-srg/usagemon/domain/repository"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteHistoryRepository persists poll results in a local SQLite database
type SQLiteHistoryRepository struct {
	db   *sql.DB
	path string
}

// NewSQLiteHistoryRepository opens (creating if needed) the history database.
// An empty customPath selects ~/.config/usagemon/usage_history.db.
func NewSQLiteHistoryRepository(customPath string) (repository.HistoryRepository, error) {
	dbPath := customPath
	if dbPath == "" {
		dbPath = defaultHistoryDBPath()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, domain.ErrRepository("open history database", err).
			WithDetails("path", dbPath)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, domain.ErrRepository("open history database", err).
			WithDetails("path", dbPath)
	}

	repo := &SQLiteHistoryRepository{db: db, path: dbPath}
	if err := repo.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func defaultHistoryDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "usagemon", "usage_history.db")
}

func (r *SQLiteHistoryRepository) initSchema() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS usage_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp INTEGER NOT NULL,
		usage_percent REAL NOT NULL,
		tokens_used INTEGER NOT NULL,
		tokens_limit INTEGER NOT NULL,
		tokens_remaining INTEGER NOT NULL,
		reset_time TEXT,
		created_at INTEGER DEFAULT (strftime('%s', 'now'))
	)`)
	if err != nil {
		return domain.ErrRepository("create history table", err)
	}

	_, err = r.db.Exec(`CREATE INDEX IF NOT EXISTS idx_usage_history_timestamp ON usage_history(timestamp)`)
	if err != nil {
		return domain.ErrRepository("create history index", err)
	}
	return nil
}

// RecordUsage implements HistoryRepository
func (r *SQLiteHistoryRepository) RecordUsage(data *entity.UsageData) error {
	if data == nil {
		return domain.ErrInvalidInput("data", "must not be nil")
	}

	_, err := r.db.Exec(
		`INSERT INTO usage_history (timestamp, usage_percent, tokens_used, tokens_limit, tokens_remaining, reset_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(),
		data.UsagePercent,
		data.TokensUsed,
		data.TokensLimit,
		data.TokensRemaining,
		data.ResetTime,
	)
	if err != nil {
		return domain.ErrRepository("record usage", err)
	}
	return nil
}

// GetHistory implements HistoryRepository
func (r *SQLiteHistoryRepository) GetHistory(hours int) ([]entity.UsageHistoryRecord, error) {
	if hours <= 0 {
		return nil, domain.ErrInvalidInput("hours", "must be positive")
	}
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()

	rows, err := r.db.Query(
		`SELECT id, timestamp, usage_percent, tokens_used, tokens_limit, tokens_remaining, reset_time
		 FROM usage_history
		 WHERE timestamp >= ?
		 ORDER BY timestamp ASC`,
		cutoff,
	)
	if err != nil {
		return nil, domain.ErrRepository("get history", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []entity.UsageHistoryRecord
	for rows.Next() {
		var rec entity.UsageHistoryRecord
		var resetTime sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.UsagePercent,
			&rec.TokensUsed, &rec.TokensLimit, &rec.TokensRemaining, &resetTime); err != nil {
			return nil, domain.ErrRepository("scan history row", err)
		}
		if resetTime.Valid {
			rec.ResetTime = &resetTime.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrRepository("get history", err)
	}
	return records, nil
}

// GetStatistics implements HistoryRepository
func (r *SQLiteHistoryRepository) GetStatistics(hours int) (*entity.UsageStatistics, error) {
	if hours <= 0 {
		return nil, domain.ErrInvalidInput("hours", "must be positive")
	}
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour).Unix()

	var stats entity.UsageStatistics
	var avg, peak, min sql.NullFloat64
	err := r.db.QueryRow(
		`SELECT AVG(usage_percent), MAX(usage_percent), MIN(usage_percent), COUNT(*)
		 FROM usage_history
		 WHERE timestamp >= ?`,
		cutoff,
	).Scan(&avg, &peak, &min, &stats.TotalRecords)
	if err != nil {
		return nil, domain.ErrRepository("get statistics", err)
	}

	if avg.Valid {
		stats.AverageUsage = avg.Float64
	}
	if peak.Valid {
		stats.PeakUsage = peak.Float64
	}
	if min.Valid {
		stats.MinUsage = min.Float64
	}
	return &stats, nil
}

// Cleanup implements HistoryRepository
func (r *SQLiteHistoryRepository) Cleanup(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, domain.ErrInvalidInput("retentionDays", "must be positive")
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Unix()

	result, err := r.db.Exec(`DELETE FROM usage_history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, domain.ErrRepository("cleanup history", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, domain.ErrRepository("cleanup history", err)
	}
	return deleted, nil
}

// Close implements HistoryRepository
func (r *SQLiteHistoryRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close history database: %w", err)
	}
	return nil
}
