// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// change_log.go records catalog mutations in the database for audit and
// debugging purposes. Each entry captures what changed, how, and the
// catalog revision the change produced.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Change describes one applied catalog mutation.
type Change struct {
	ID         uuid.UUID `json:"id"`
	EntityType string    `json:"entityType"` // "category" or "product"
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`
	Revision   int64     `json:"revision"`
	ChangedAt  time.Time `json:"changedAt"`
}

// ChangeLogStore handles catalog change log operations.
type ChangeLogStore struct {
	db *sql.DB
}

// NewChangeLogStore creates a new ChangeLogStore.
func NewChangeLogStore(db *sql.DB) *ChangeLogStore {
	return &ChangeLogStore{db: db}
}

// maxChangeRows bounds one INSERT; five parameters per row stays well
// under PostgreSQL's 65535 bind parameter limit.
const maxChangeRows = 1000

// Record stores change entries, one multi-row INSERT per batch. Failures
// are logged and swallowed: the catalog itself has already been saved.
func (s *ChangeLogStore) Record(ctx context.Context, changes ...Change) {
	for len(changes) > 0 {
		n := min(len(changes), maxChangeRows)
		s.insert(ctx, changes[:n])
		changes = changes[n:]
	}
}

func (s *ChangeLogStore) insert(ctx context.Context, batch []Change) {
	var q strings.Builder
	q.WriteString("INSERT INTO catalog_changes (id, entity_type, entity_id, action, revision) VALUES ")
	args := make([]any, 0, len(batch)*5)
	for i, c := range batch {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if i > 0 {
			q.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&q, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, c.ID, c.EntityType, c.EntityID, c.Action, c.Revision)
	}

	if _, err := s.db.ExecContext(ctx, q.String(), args...); err != nil {
		slog.Warn("failed to record catalog changes",
			"count", len(batch),
			"first_entity_id", batch[0].EntityID,
			"revision", batch[0].Revision,
			"error", err,
		)
		return
	}
	slog.Debug("catalog changes recorded", "count", len(batch), "revision", batch[0].Revision)
}

// Recent returns the most recent changes, newest first.
func (s *ChangeLogStore) Recent(ctx context.Context, limit int) ([]Change, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, action, revision, changed_at
		FROM catalog_changes
		ORDER BY changed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	entries := []Change{}
	for rows.Next() {
		var c Change
		if err := rows.Scan(&c.ID, &c.EntityType, &c.EntityID, &c.Action, &c.Revision, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan change log: %w", err)
		}
		entries = append(entries, c)
	}
	return entries, rows.Err()
}
