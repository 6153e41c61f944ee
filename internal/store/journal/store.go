// Package journal records every dispatch of the running session in an
// in-memory SQLite database so the presentation layer can show recent calls.
// Nothing is written to disk; the journal ends with the process.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sentidash/internal/logger"
	"sentidash/internal/predict"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Store is the dispatch journal. It implements predict.DispatchObserver.
type Store struct {
	db         *gorm.DB
	maxEntries int
}

// Entry is the read view of one journal row.
type Entry struct {
	ID         int64     `json:"id"`
	TraceID    string    `json:"trace_id"`
	Target     string    `json:"target"`
	Path       string    `json:"path"`
	Text       string    `json:"text"`
	Status     string    `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Missing    []string  `json:"missing,omitempty"`
	Violations []string  `json:"violations,omitempty"`
	RawBody    string    `json:"raw_body,omitempty"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	StartedAt  time.Time `json:"started_at"`
}

// Query filters List. Zero Limit means 50.
type Query struct {
	Target string
	Status string
	Limit  int
	Offset int
}

// NewStore opens a private in-memory database. maxEntries <= 0 keeps everything.
func NewStore(maxEntries int) (*Store, error) {
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: ":memory:"}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is its own database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := db.AutoMigrate(&DispatchModel{}); err != nil {
		return nil, fmt.Errorf("migrate journal failed: %w", err)
	}
	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Close releases the database; the journal content is gone afterwards.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AfterDispatch stores trace. Errors are logged; journaling never affects a dispatch.
func (s *Store) AfterDispatch(ctx context.Context, trace predict.Trace) {
	if err := s.Record(context.WithoutCancel(ctx), trace); err != nil {
		logger.Warnf("journal record trace=%s failed: %v", trace.TraceID, err)
	}
}

// Record inserts one trace and prunes the oldest rows beyond maxEntries.
func (s *Store) Record(ctx context.Context, trace predict.Trace) error {
	if s == nil || s.db == nil {
		return errors.New("journal not initialized")
	}
	row := toModel(trace)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if s.maxEntries <= 0 {
			return nil
		}
		return tx.Where("id <= ?", row.ID-int64(s.maxEntries)).Delete(&DispatchModel{}).Error
	})
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, q Query) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("journal not initialized")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	tx := s.db.WithContext(ctx).Model(&DispatchModel{})
	if t := strings.ToLower(strings.TrimSpace(q.Target)); t != "" {
		tx = tx.Where("target = ?", t)
	}
	if st := strings.ToLower(strings.TrimSpace(q.Status)); st != "" {
		tx = tx.Where("status = ?", st)
	}
	var rows []DispatchModel
	if err := tx.Order("id DESC").Limit(limit).Offset(max(q.Offset, 0)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toEntry(row))
	}
	return out, nil
}

// Count returns the number of retained entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&DispatchModel{}).Count(&n).Error
	return n, err
}

func toModel(trace predict.Trace) DispatchModel {
	row := DispatchModel{
		TraceID:       trace.TraceID,
		Target:        trace.Target,
		Path:          trace.Path,
		Text:          trace.Text,
		Status:        StatusOK,
		Missing:       encodeList(trace.Missing),
		Violations:    encodeList(trace.SchemaViolations),
		RawBody:       string(trace.Raw),
		ElapsedMillis: trace.Elapsed.Milliseconds(),
		StartedAtUnix: trace.StartedAt.UnixMilli(),
	}
	if len(trace.Missing) > 0 || len(trace.SchemaViolations) > 0 {
		row.Status = StatusPartial
	}
	if trace.Err != nil {
		row.Status = StatusFailed
		row.Error = trace.Err.Error()
		var f *predict.DispatchFailure
		if errors.As(trace.Err, &f) {
			row.ErrorKind = string(f.Kind)
			row.StatusCode = f.StatusCode
		}
	}
	return row
}

func toEntry(row DispatchModel) Entry {
	return Entry{
		ID:         row.ID,
		TraceID:    row.TraceID,
		Target:     row.Target,
		Path:       row.Path,
		Text:       row.Text,
		Status:     row.Status,
		ErrorKind:  row.ErrorKind,
		Error:      row.Error,
		StatusCode: row.StatusCode,
		Missing:    decodeList(row.Missing),
		Violations: decodeList(row.Violations),
		RawBody:    row.RawBody,
		ElapsedMS:  row.ElapsedMillis,
		StartedAt:  time.UnixMilli(row.StartedAtUnix),
	}
}

func encodeList(items []string) datatypes.JSON {
	if len(items) == 0 {
		return datatypes.JSON("[]")
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func decodeList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
