package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trustgraph/internal/trust/models"
	"trustgraph/pkg/platform/sentinel"
)

// PostgresStore persists trust records in PostgreSQL. Endorsements are kept
// inline on the record as JSONB and mirrored into trust_endorsements.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed trust store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const recordColumns = `id, subject, issuer, trust_score, endorsements, status,
		created_at, updated_at, revoked_by, revocation_reason, revoked_at`

func (s *PostgresStore) Get(ctx context.Context, subject models.DID) (*models.TrustRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM trust_records WHERE subject = $1`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, string(subject)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find trust record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Put(ctx context.Context, rec *models.TrustRecord) error {
	if rec == nil || rec.Subject.IsZero() {
		return sentinel.ErrInvalidInput
	}
	return upsertRecord(ctx, s.db, rec)
}

// Update locks the subject's row with SELECT ... FOR UPDATE for the
// duration of fn.
func (s *PostgresStore) Update(ctx context.Context, subject models.DID, fn UpdateFunc) (*models.TrustRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin trust update tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + recordColumns + ` FROM trust_records WHERE subject = $1 FOR UPDATE`
	rec, err := scanRecord(tx.QueryRowContext(ctx, query, string(subject)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find trust record for update: %w", err)
	}

	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := upsertRecord(ctx, tx, rec); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit trust update: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) SaveEndorsement(ctx context.Context, e models.Endorsement) error {
	if e.ID == "" {
		return sentinel.ErrInvalidInput
	}
	query := `
		INSERT INTO trust_endorsements (id, endorser, subject, trust_level, endorsed_at, evidence, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		string(e.Endorser),
		string(e.Subject),
		e.TrustLevel,
		e.Timestamp,
		e.Evidence,
		e.Signature,
	)
	if err != nil {
		return fmt.Errorf("save endorsement: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetEndorsement(ctx context.Context, id string) (*models.Endorsement, error) {
	query := `
		SELECT id, endorser, subject, trust_level, endorsed_at, evidence, signature
		FROM trust_endorsements
		WHERE id = $1
	`
	var (
		e                 models.Endorsement
		endorser, subject string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &endorser, &subject, &e.TrustLevel, &e.Timestamp, &e.Evidence, &e.Signature,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find endorsement: %w", err)
	}
	e.Endorser = models.DID(endorser)
	e.Subject = models.DID(subject)
	return &e, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.TrustRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM trust_records ORDER BY subject`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trust records: %w", err)
	}
	defer rows.Close()

	records := []*models.TrustRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trust record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trust records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trust_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trust records: %w", err)
	}
	return n, nil
}

func upsertRecord(ctx context.Context, exec dbExecutor, rec *models.TrustRecord) error {
	endorsements := rec.Endorsements
	if endorsements == nil {
		endorsements = []models.Endorsement{}
	}
	payload, err := json.Marshal(endorsements)
	if err != nil {
		return fmt.Errorf("encode endorsements: %w", err)
	}

	query := `
		INSERT INTO trust_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (subject) DO UPDATE SET
			id = EXCLUDED.id,
			issuer = EXCLUDED.issuer,
			trust_score = EXCLUDED.trust_score,
			endorsements = EXCLUDED.endorsements,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			revoked_by = EXCLUDED.revoked_by,
			revocation_reason = EXCLUDED.revocation_reason,
			revoked_at = EXCLUDED.revoked_at
	`
	_, err = exec.ExecContext(ctx, query,
		rec.ID,
		string(rec.Subject),
		string(rec.Issuer),
		rec.TrustScore,
		string(payload),
		string(rec.Status),
		rec.Created,
		rec.Updated,
		nullString(string(rec.RevokedBy)),
		nullString(rec.RevocationReason),
		rec.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert trust record: %w", err)
	}
	return nil
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.TrustRecord, error) {
	var (
		rec                      models.TrustRecord
		subject, issuer, status  string
		payload                  []byte
		revokedBy, revokedReason sql.NullString
		revokedAt                sql.NullTime
		createdAt, updatedAt     time.Time
	)
	err := row.Scan(
		&rec.ID, &subject, &issuer, &rec.TrustScore, &payload, &status,
		&createdAt, &updatedAt, &revokedBy, &revokedReason, &revokedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &rec.Endorsements); err != nil {
		return nil, fmt.Errorf("decode endorsements: %w", err)
	}
	if rec.Endorsements == nil {
		rec.Endorsements = []models.Endorsement{}
	}
	rec.Subject = models.DID(subject)
	rec.Issuer = models.DID(issuer)
	rec.Status = models.Status(status)
	rec.Created = createdAt
	rec.Updated = updatedAt
	rec.RevokedBy = models.DID(revokedBy.String)
	rec.RevocationReason = revokedReason.String
	if revokedAt.Valid {
		at := revokedAt.Time
		rec.RevokedAt = &at
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
