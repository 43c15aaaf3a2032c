package credits

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "github.com/teddybearwork/pickme/pkg/domain"
	"github.com/teddybearwork/pickme/pkg/platform/sentinel"
)

// PostgresStore persists the transaction log in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, tx *Transaction) error {
	if tx == nil {
		return sentinel.ErrInvalidState
	}
	query := `
		INSERT INTO credit_transactions
			(id, officer_id, request_id, action, amount, previous_balance, new_balance, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(tx.ID),
		uuid.UUID(tx.OfficerID),
		nullRequestID(tx.RequestID),
		string(tx.Action),
		tx.Amount,
		tx.PreviousBalance,
		tx.NewBalance,
		tx.Description,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append credit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOfficer(ctx context.Context, officerID id.OfficerID, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, officer_id, request_id, action, amount, previous_balance, new_balance, description, created_at
		FROM credit_transactions
		WHERE officer_id = $1
		ORDER BY created_at DESC
	`
	args := []any{uuid.UUID(officerID)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credit transactions: %w", err)
	}
	defer rows.Close()

	var entries []*Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit transaction: %w", err)
		}
		entries = append(entries, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credit transactions: %w", err)
	}
	return entries, nil
}

func scanTransaction(rows *sql.Rows) (*Transaction, error) {
	var tx Transaction
	var txID, officerID uuid.UUID
	var requestID uuid.NullUUID
	var action string
	if err := rows.Scan(
		&txID,
		&officerID,
		&requestID,
		&action,
		&tx.Amount,
		&tx.PreviousBalance,
		&tx.NewBalance,
		&tx.Description,
		&tx.CreatedAt,
	); err != nil {
		return nil, err
	}
	tx.ID = id.TransactionID(txID)
	tx.OfficerID = id.OfficerID(officerID)
	tx.Action = Action(action)
	if requestID.Valid {
		rid := id.RequestID(requestID.UUID)
		tx.RequestID = &rid
	}
	return &tx, nil
}

func nullRequestID(rid *id.RequestID) uuid.NullUUID {
	if rid == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*rid), Valid: true}
}
