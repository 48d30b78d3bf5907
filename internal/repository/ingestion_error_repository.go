package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowgate/rowgate/internal/domain"
)

type ingestionErrorRepository struct {
	pool *pgxpool.Pool
}

// NewIngestionErrorRepository wires a repository backed by pgxpool.
func NewIngestionErrorRepository(pool *pgxpool.Pool) IngestionErrorRepository {
	return &ingestionErrorRepository{pool: pool}
}

func (r *ingestionErrorRepository) RecordBatch(ctx context.Context, operationID uuid.UUID, errs []domain.ValidationError) error {
	if r.pool == nil {
		return fmt.Errorf("ingestion error repository not initialized")
	}
	if len(errs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range errs {
		var column, row, line any
		if e.Column != "" {
			column = e.Column
		}
		if e.Row > 0 {
			row = e.Row
		}
		if e.Line > 0 {
			line = e.Line
		}
		batch.Queue(
			`INSERT INTO ingestion_errors (operation_id, code, message, column_name, row_number, line_number)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			operationID,
			e.Code,
			e.Message,
			column,
			row,
			line,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range errs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to record ingestion errors: %w", err)
		}
	}
	return nil
}

func (r *ingestionErrorRepository) ListByOperation(ctx context.Context, operationID uuid.UUID) ([]domain.ValidationError, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("ingestion error repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT code, message, column_name, row_number, line_number
		 FROM ingestion_errors
		 WHERE operation_id = $1
		 ORDER BY id`,
		operationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion errors: %w", err)
	}
	defer rows.Close()

	errsOut := []domain.ValidationError{}
	for rows.Next() {
		var (
			e      domain.ValidationError
			column pgtype.Text
			row    pgtype.Int4
			line   pgtype.Int4
		)
		if scanErr := rows.Scan(&e.Code, &e.Message, &column, &row, &line); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ingestion error: %w", scanErr)
		}
		e.Column = column.String
		if row.Valid {
			e.Row = int(row.Int32)
		}
		if line.Valid {
			e.Line = int(line.Int32)
		}
		errsOut = append(errsOut, e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate ingestion errors: %w", rowsErr)
	}

	return errsOut, nil
}
