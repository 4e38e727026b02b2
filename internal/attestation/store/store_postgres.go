package store

import (
	"context"
	"database/sql"
	"fmt"

	"lexara/internal/attestation/models"
	"lexara/pkg/domain"
)

// PostgresStore persists attestations in PostgreSQL. Rows are insert-only.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed attestation store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, att models.PeerAttestation) error {
	query := `
		INSERT INTO peer_attestations
			(id, subject_user_id, attester_id, attestation_type, score, text,
			 professional_relationship, years_known, weight, anchor_tx_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		att.ID.String(),
		att.SubjectID.String(),
		att.AttesterID.String(),
		att.AttestationType,
		att.Score,
		att.Text,
		att.Relationship,
		att.YearsKnown,
		att.Weight,
		att.AnchorTxID,
		att.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attestation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID domain.UserID) ([]models.PeerAttestation, error) {
	query := `
		SELECT id, subject_user_id, attester_id, attestation_type, score, text,
		       professional_relationship, years_known, weight, anchor_tx_id, created_at
		FROM peer_attestations
		WHERE subject_user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, subjectID.String())
	if err != nil {
		return nil, fmt.Errorf("list attestations: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []models.PeerAttestation
	for rows.Next() {
		var (
			att      models.PeerAttestation
			id       string
			subject  string
			attester string
		)
		err := rows.Scan(&id, &subject, &attester, &att.AttestationType,
			&att.Score, &att.Text, &att.Relationship, &att.YearsKnown,
			&att.Weight, &att.AnchorTxID, &att.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("list attestations: %w", err)
		}
		att.ID = models.AttestationID(id)
		if att.SubjectID, err = domain.ParseUserID(subject); err != nil {
			return nil, fmt.Errorf("stored subject_user_id: %w", err)
		}
		if att.AttesterID, err = domain.ParseUserID(attester); err != nil {
			return nil, fmt.Errorf("stored attester_id: %w", err)
		}
		out = append(out, att)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountByPair(ctx context.Context, subjectID, attesterID domain.UserID) (int, error) {
	query := `SELECT COUNT(*) FROM peer_attestations WHERE subject_user_id = $1 AND attester_id = $2`
	var count int
	err := s.db.QueryRowContext(ctx, query, subjectID.String(), attesterID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attestations: %w", err)
	}
	return count, nil
}
