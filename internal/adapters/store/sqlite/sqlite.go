// Package sqlite provides a SQLite-backed implementation of ports.StateStore.
//
// Each state aggregate is serialized as JSON under its own key in a single
// key-value table. Saves overwrite the whole serialized aggregate; there is
// no merging. A stored value that cannot be decoded is treated as absent:
// the load logs the incident and returns the aggregate's default, so one
// corrupt key never takes the other aggregates down with it.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/eletroorca/quote-service/internal/domain"
	"github.com/eletroorca/quote-service/internal/platform/logging"
	"github.com/eletroorca/quote-service/internal/ports"
)

// Stable aggregate keys. Renaming a key orphans its stored value.
const (
	keyProfile = "professional_profile"
	keyQuote   = "active_quote"
	keyItems   = "active_items"
	keyHistory = "quote_history"
)

const schema = `
CREATE TABLE IF NOT EXISTS app_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Ensure Store implements the ports it claims.
var (
	_ ports.StateStore    = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Store implements ports.StateStore using SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Store with the given database path. It creates the parent
// directories and runs migrations automatically.
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "sqlite"
}

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// load decodes the value stored under key into target. It reports false
// when the key is absent or its value is corrupt, in which case the caller
// returns the aggregate's default.
func (s *Store) load(ctx context.Context, key string, target any) (bool, error) {
	var raw string

	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE key = ?", key,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		s.corruptLogger(ctx).Warn("stored value is corrupt, using default",
			slog.String("key", key),
			slog.Any("error", err),
		)

		return false, nil
	}

	return true, nil
}

func (s *Store) corruptLogger(ctx context.Context) *slog.Logger {
	if l := logging.FromContext(ctx); l != nil {
		return l
	}

	return s.logger
}

// save overwrites the value stored under key.
func (s *Store) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

// LoadProfile implements ports.StateStore.
func (s *Store) LoadProfile(ctx context.Context) (domain.ProfessionalProfile, error) {
	var profile domain.ProfessionalProfile

	ok, err := s.load(ctx, keyProfile, &profile)
	if err != nil {
		return domain.DefaultProfile(), err
	}

	if !ok {
		return domain.DefaultProfile(), nil
	}

	return profile, nil
}

// SaveProfile implements ports.StateStore.
func (s *Store) SaveProfile(ctx context.Context, p domain.ProfessionalProfile) error {
	return s.save(ctx, keyProfile, p)
}

// LoadQuote implements ports.StateStore.
func (s *Store) LoadQuote(ctx context.Context) (domain.QuoteDetails, error) {
	var quote domain.QuoteDetails

	ok, err := s.load(ctx, keyQuote, &quote)
	if err != nil {
		return domain.NewQuoteDetails(time.Now()), err
	}

	if !ok {
		return domain.NewQuoteDetails(time.Now()), nil
	}

	return quote, nil
}

// SaveQuote implements ports.StateStore.
func (s *Store) SaveQuote(ctx context.Context, q domain.QuoteDetails) error {
	return s.save(ctx, keyQuote, q)
}

// LoadItems implements ports.StateStore.
func (s *Store) LoadItems(ctx context.Context) ([]domain.LineItem, error) {
	var items []domain.LineItem

	ok, err := s.load(ctx, keyItems, &items)
	if err != nil {
		return []domain.LineItem{}, err
	}

	if !ok || items == nil {
		return []domain.LineItem{}, nil
	}

	return items, nil
}

// SaveItems implements ports.StateStore.
func (s *Store) SaveItems(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}

	return s.save(ctx, keyItems, items)
}

// LoadHistory implements ports.StateStore.
func (s *Store) LoadHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	var history []domain.HistoryEntry

	ok, err := s.load(ctx, keyHistory, &history)
	if err != nil {
		return []domain.HistoryEntry{}, err
	}

	if !ok || history == nil {
		return []domain.HistoryEntry{}, nil
	}

	return history, nil
}

// SaveHistory implements ports.StateStore.
func (s *Store) SaveHistory(ctx context.Context, entries []domain.HistoryEntry) error {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	return s.save(ctx, keyHistory, entries)
}
