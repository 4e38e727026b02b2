package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lexara/internal/credential/models"
	"lexara/pkg/domain"
)

// PostgresStore persists credentials in PostgreSQL. Rows are never deleted;
// lifecycle transitions update status and the associated bookkeeping columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, cred models.Credential) error {
	query := `
		INSERT INTO legal_credentials
			(id, user_id, credential_type, issuing_authority, credential_name,
			 jurisdiction, verification_status, anchor_tx_id, evidence_cid,
			 verifier_id, rejection_reason, issued_date, expiry_date,
			 submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := s.db.ExecContext(ctx, query,
		cred.ID.String(),
		cred.UserID.String(),
		cred.CredentialType,
		cred.IssuingAuthority,
		cred.CredentialName,
		cred.Jurisdiction,
		string(cred.Status),
		nullable(cred.AnchorTxID),
		nullable(cred.EvidenceCID),
		nullableUser(cred.VerifierID),
		nullable(cred.RejectionReason),
		cred.IssuedDate,
		cred.ExpiryDate,
		cred.SubmittedAt,
		cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id models.CredentialID) (models.Credential, error) {
	query := selectColumns + ` FROM legal_credentials WHERE id = $1`
	cred, err := scanCredential(s.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credential{}, ErrNotFound
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("get credential: %w", err)
	}
	return cred, nil
}

func (s *PostgresStore) Update(ctx context.Context, cred models.Credential, from models.Status) error {
	query := `
		UPDATE legal_credentials
		SET verification_status = $2, anchor_tx_id = $3, verifier_id = $4,
		    rejection_reason = $5, updated_at = $6
		WHERE id = $1 AND verification_status = $7`

	res, err := s.db.ExecContext(ctx, query,
		cred.ID.String(),
		string(cred.Status),
		nullable(cred.AnchorTxID),
		nullableUser(cred.VerifierID),
		nullable(cred.RejectionReason),
		cred.UpdatedAt,
		string(from),
	)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	// Rows are never deleted, so zero rows means a concurrent transition won.
	if n == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID domain.UserID) ([]models.Credential, error) {
	query := selectColumns + ` FROM legal_credentials WHERE user_id = $1 ORDER BY submitted_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []models.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("list credentials: %w", err)
		}
		out = append(out, cred)
	}
	return out, rows.Err()
}

const selectColumns = `
	SELECT id, user_id, credential_type, issuing_authority, credential_name,
	       jurisdiction, verification_status, anchor_tx_id, evidence_cid,
	       verifier_id, rejection_reason, issued_date, expiry_date,
	       submitted_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (models.Credential, error) {
	var (
		cred     models.Credential
		id       string
		userID   string
		status   string
		anchorTx sql.NullString
		cid      sql.NullString
		verifier sql.NullString
		reason   sql.NullString
		issued   sql.NullTime
		expiry   sql.NullTime
	)
	err := row.Scan(&id, &userID, &cred.CredentialType, &cred.IssuingAuthority,
		&cred.CredentialName, &cred.Jurisdiction, &status, &anchorTx, &cid,
		&verifier, &reason, &issued, &expiry, &cred.SubmittedAt, &cred.UpdatedAt)
	if err != nil {
		return models.Credential{}, err
	}

	cred.ID = models.CredentialID(id)
	cred.UserID, err = domain.ParseUserID(userID)
	if err != nil {
		return models.Credential{}, fmt.Errorf("stored user_id: %w", err)
	}
	cred.Status = models.Status(status)
	cred.AnchorTxID = anchorTx.String
	cred.EvidenceCID = cid.String
	cred.RejectionReason = reason.String
	if verifier.Valid {
		cred.VerifierID, err = domain.ParseUserID(verifier.String)
		if err != nil {
			return models.Credential{}, fmt.Errorf("stored verifier_id: %w", err)
		}
	}
	if issued.Valid {
		t := issued.Time
		cred.IssuedDate = &t
	}
	if expiry.Valid {
		t := expiry.Time
		cred.ExpiryDate = &t
	}
	return cred, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableUser(id domain.UserID) any {
	if id.IsNil() {
		return nil
	}
	return id.String()
}
