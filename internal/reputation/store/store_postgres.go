package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lexara/internal/reputation/models"
	"lexara/pkg/domain"
)

// PostgresStore persists the event log in PostgreSQL. Rows are insert-only;
// the schema carries no UPDATE path.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed event store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, event models.Event) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}

	query := `
		INSERT INTO reputation_events
			(id, user_id, event_type, gig_id, reviewer_id, score_change, rating,
			 review_text, evidence_hash, anchor_tx_id, occurred_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.db.ExecContext(ctx, query,
		event.ID.String(),
		event.UserID.String(),
		string(event.Type),
		nullable(event.GigID),
		nullable(event.ReviewerID),
		event.ScoreChange,
		event.Rating,
		event.ReviewText,
		nullable(event.EvidenceHash),
		event.AnchorTxID,
		event.Timestamp,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert reputation event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID domain.UserID, filter models.Filter) ([]models.Event, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, user_id, event_type, gig_id, reviewer_id, score_change, rating,
		       review_text, evidence_hash, anchor_tx_id, occurred_at, metadata
		FROM reputation_events
		WHERE user_id = $1`)

	args := []any{userID.String()}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			args = append(args, string(t))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		sb.WriteString(" AND event_type IN (" + strings.Join(placeholders, ", ") + ")")
	}
	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		sb.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", len(args)))
	}
	if !filter.Until.IsZero() {
		args = append(args, filter.Until)
		sb.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", len(args)))
	}
	sb.WriteString(" ORDER BY occurred_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query reputation events: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LatestTimestamp(ctx context.Context, userID domain.UserID) (time.Time, error) {
	var ts sql.NullTime
	query := `SELECT MAX(occurred_at) FROM reputation_events WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, query, userID.String()).Scan(&ts); err != nil {
		return time.Time{}, fmt.Errorf("query latest event timestamp: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return ts.Time, nil
}

func scanEvent(rows *sql.Rows) (models.Event, error) {
	var (
		event                         models.Event
		rawID, rawUser, rawType       string
		gigID, reviewerID, evidence   sql.NullString
		metadata                      []byte
	)
	err := rows.Scan(&rawID, &rawUser, &rawType, &gigID, &reviewerID,
		&event.ScoreChange, &event.Rating, &event.ReviewText, &evidence,
		&event.AnchorTxID, &event.Timestamp, &metadata)
	if err != nil {
		return models.Event{}, fmt.Errorf("scan reputation event: %w", err)
	}

	event.ID = models.EventID(rawID)
	event.Type = models.EventType(rawType)
	event.GigID = gigID.String
	event.ReviewerID = reviewerID.String
	event.EvidenceHash = evidence.String

	userID, err := domain.ParseUserID(rawUser)
	if err != nil {
		return models.Event{}, fmt.Errorf("parse stored user_id: %w", err)
	}
	event.UserID = userID

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
			return models.Event{}, fmt.Errorf("unmarshal event metadata: %w", err)
		}
	}
	return event, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
