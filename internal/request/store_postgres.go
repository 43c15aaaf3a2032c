package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/teddybearwork/pickme/internal/query"
	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
)

// PostgresStore persists results in PostgreSQL. Per-provider results are a
// JSONB column: they are read back whole, never queried into.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const resultColumns = `id, officer_id, query_kind, query_raw, query_normalized, query_tier, query_requested_at, status, provider_results, credits_used, summary_text, completed_at`

func (s *PostgresStore) Save(ctx context.Context, result *query.AggregatedResult) error {
	if result == nil {
		return sentinel.ErrInvalidState
	}
	providerJSON, err := json.Marshal(result.ProviderResults)
	if err != nil {
		return fmt.Errorf("encode provider results: %w", err)
	}
	stmt := `
		INSERT INTO query_results (` + resultColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, stmt,
		uuid.UUID(result.ID),
		uuid.UUID(result.OfficerID),
		string(result.Query.Kind),
		result.Query.RawText,
		result.Query.NormalizedValue,
		string(result.Query.Tier),
		result.Query.RequestedAt,
		string(result.Status),
		providerJSON,
		result.CreditsUsed,
		result.SummaryText,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("save query result: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*query.AggregatedResult, error) {
	stmt := `SELECT ` + resultColumns + ` FROM query_results WHERE id = $1`
	result, err := scanResult(s.db.QueryRowContext(ctx, stmt, uuid.UUID(requestID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find query result: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) ListByOfficer(ctx context.Context, officerID id.OfficerID, limit int) ([]*query.AggregatedResult, error) {
	stmt := `
		SELECT ` + resultColumns + `
		FROM query_results
		WHERE officer_id = $1
		ORDER BY completed_at DESC
	`
	args := []any{uuid.UUID(officerID)}
	if limit > 0 {
		stmt += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list query results: %w", err)
	}
	defer rows.Close()

	var results []*query.AggregatedResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan query result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query results: %w", err)
	}
	return results, nil
}

type resultRow interface {
	Scan(dest ...any) error
}

func scanResult(row resultRow) (*query.AggregatedResult, error) {
	var result query.AggregatedResult
	var requestID, officerID uuid.UUID
	var kind, tier, status string
	var providerJSON []byte
	if err := row.Scan(
		&requestID,
		&officerID,
		&kind,
		&result.Query.RawText,
		&result.Query.NormalizedValue,
		&tier,
		&result.Query.RequestedAt,
		&status,
		&providerJSON,
		&result.CreditsUsed,
		&result.SummaryText,
		&result.CompletedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(providerJSON, &result.ProviderResults); err != nil {
		return nil, fmt.Errorf("decode provider results: %w", err)
	}
	result.ID = id.RequestID(requestID)
	result.OfficerID = id.OfficerID(officerID)
	result.Query.Kind = query.Kind(kind)
	result.Query.Tier = query.Tier(tier)
	result.Status = query.Status(status)
	return &result, nil
}
