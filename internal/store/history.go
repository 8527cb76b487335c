package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"
)

// Send outcome values recorded in history.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// SendRecord is one delivery attempt as recorded in the history database.
type SendRecord struct {
	ID        int64
	Phone     string
	Recipient string
	Text      string
	Status    string
	Error     string
	FiredAt   time.Time
}

// History keeps the send log and the raw generated texts in an embedded
// SQLite database. The last generated texts feed back into the prompt so the
// model does not repeat itself.
type History struct{ db *sql.DB }

// OpenHistory opens (or creates) the history database at the given path,
// applies recommended PRAGMAs and runs migrations.
func OpenHistory(ctx context.Context, path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &History{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (h *History) Close() error {
	return h.db.Close()
}

// RecordSend appends one delivery attempt to the send log.
func (h *History) RecordSend(ctx context.Context, rec SendRecord) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO sends (phone, recipient, text, status, error, fired_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Phone, rec.Recipient, rec.Text, rec.Status, rec.Error, rec.FiredAt.UTC().Unix(),
	)
	return err
}

// Recent returns the latest delivery attempts, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]SendRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, phone, recipient, text, status, error, fired_at
		FROM sends
		ORDER BY id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []SendRecord
	for rows.Next() {
		var (
			rec     SendRecord
			firedAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Phone, &rec.Recipient, &rec.Text, &rec.Status, &rec.Error, &firedAt); err != nil {
			return nil, err
		}
		rec.FiredAt = time.Unix(firedAt, 0).UTC()
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// RecordGenerated stores a raw generated text for prompt-history feedback.
func (h *History) RecordGenerated(ctx context.Context, text string) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO generated_texts (text, created_at)
		VALUES (?, ?)`,
		text, time.Now().UTC().Unix(),
	)
	return err
}

// LastGenerated returns up to n most recent raw generated texts, oldest first
// so they read naturally inside the prompt.
func (h *History) LastGenerated(ctx context.Context, n int) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT text
		FROM generated_texts
		ORDER BY id DESC
		LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		texts = append(texts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// reverse to chronological order
	for i, j := 0, len(texts)-1; i < j; i, j = i+1, j-1 {
		texts[i], texts[j] = texts[j], texts[i]
	}
	return texts, nil
}
