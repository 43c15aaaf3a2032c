package officer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
)

// PostgresStore persists officers in PostgreSQL. Balance mutations use
// conditional single-statement updates so concurrent debits serialize on the
// row without an explicit transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const officerColumns = `id, name, badge_number, email, status, credits_remaining, total_credits, rate_limit_per_hour, pro_access_enabled, created_at, updated_at`

func (s *PostgresStore) FindByID(ctx context.Context, officerID id.OfficerID) (*Officer, error) {
	query := `SELECT ` + officerColumns + ` FROM officers WHERE id = $1`
	o, err := scanOfficer(s.db.QueryRowContext(ctx, query, uuid.UUID(officerID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find officer: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) Save(ctx context.Context, o *Officer) error {
	if o == nil {
		return sentinel.ErrInvalidState
	}
	query := `
		INSERT INTO officers (` + officerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			badge_number = EXCLUDED.badge_number,
			email = EXCLUDED.email,
			status = EXCLUDED.status,
			credits_remaining = EXCLUDED.credits_remaining,
			total_credits = EXCLUDED.total_credits,
			rate_limit_per_hour = EXCLUDED.rate_limit_per_hour,
			pro_access_enabled = EXCLUDED.pro_access_enabled,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(o.ID),
		o.Name,
		o.BadgeNumber,
		o.Email,
		string(o.Status),
		o.CreditsRemaining,
		o.TotalCredits,
		o.RateLimitPerHour,
		o.ProAccessEnabled,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save officer: %w", err)
	}
	return nil
}

// DebitCredits subtracts in one conditional UPDATE...RETURNING. Zero rows
// means either a missing officer or an uncoverable amount; a follow-up read
// disambiguates the two.
func (s *PostgresStore) DebitCredits(ctx context.Context, officerID id.OfficerID, amount int) (*Officer, error) {
	query := `
		UPDATE officers
		SET credits_remaining = credits_remaining - $2, updated_at = NOW()
		WHERE id = $1 AND credits_remaining >= $2
		RETURNING ` + officerColumns
	o, err := scanOfficer(s.db.QueryRowContext(ctx, query, uuid.UUID(officerID), amount))
	if err == nil {
		return o, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("debit credits: %w", err)
	}
	if _, findErr := s.FindByID(ctx, officerID); findErr != nil {
		return nil, findErr
	}
	return nil, sentinel.ErrInsufficientCredits
}

func (s *PostgresStore) AddCredits(ctx context.Context, officerID id.OfficerID, amount int) (*Officer, error) {
	query := `
		UPDATE officers
		SET credits_remaining = credits_remaining + $2,
		    total_credits = total_credits + $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + officerColumns
	o, err := scanOfficer(s.db.QueryRowContext(ctx, query, uuid.UUID(officerID), amount))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("add credits: %w", err)
	}
	return o, nil
}

type officerRow interface {
	Scan(dest ...any) error
}

func scanOfficer(row officerRow) (*Officer, error) {
	var o Officer
	var rawID uuid.UUID
	var status string
	if err := row.Scan(
		&rawID,
		&o.Name,
		&o.BadgeNumber,
		&o.Email,
		&status,
		&o.CreditsRemaining,
		&o.TotalCredits,
		&o.RateLimitPerHour,
		&o.ProAccessEnabled,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.ID = id.OfficerID(rawID)
	o.Status = Status(status)
	return &o, nil
}
