package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowgate/rowgate/internal/domain"
)

type uploadOperationRepository struct {
	pool *pgxpool.Pool
}

// NewUploadOperationRepository wires a repository backed by pgxpool.
func NewUploadOperationRepository(pool *pgxpool.Pool) UploadOperationRepository {
	return &uploadOperationRepository{pool: pool}
}

func (r *uploadOperationRepository) Insert(ctx context.Context, op domain.UploadOperation) error {
	if r.pool == nil {
		return fmt.Errorf("upload operation repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO upload_operations
		   (id, config_id, file_name, file_path, file_size, status, error_count, total_rows, valid_rows, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		op.ID,
		op.ConfigID,
		op.FileName,
		op.FilePath,
		op.FileSize,
		op.Status,
		op.ErrorCount,
		op.TotalRows,
		op.ValidRows,
		op.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload operation: %w", err)
	}
	return nil
}

func (r *uploadOperationRepository) Update(ctx context.Context, op domain.UploadOperation) error {
	if r.pool == nil {
		return fmt.Errorf("upload operation repository not initialized")
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE upload_operations
		 SET file_path = $2, status = $3, error_count = $4, total_rows = $5, valid_rows = $6, completed_at = $7
		 WHERE id = $1 AND deleted_at IS NULL`,
		op.ID,
		op.FilePath,
		op.Status,
		op.ErrorCount,
		op.TotalRows,
		op.ValidRows,
		op.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update upload operation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *uploadOperationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.UploadOperation, error) {
	if r.pool == nil {
		return domain.UploadOperation{}, fmt.Errorf("upload operation repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, config_id, file_name, file_path, file_size, status, error_count,
		        total_rows, valid_rows, started_at, completed_at, deleted_at
		 FROM upload_operations
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)

	op, err := scanUploadOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UploadOperation{}, ErrNotFound
		}
		return domain.UploadOperation{}, fmt.Errorf("failed to get upload operation: %w", err)
	}
	return op, nil
}

func (r *uploadOperationRepository) List(ctx context.Context, filter OperationFilter) ([]domain.UploadOperation, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("upload operation repository not initialized")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, config_id, file_name, file_path, file_size, status, error_count,
	                 total_rows, valid_rows, started_at, completed_at, deleted_at
	          FROM upload_operations
	          WHERE deleted_at IS NULL`
	args := []any{}
	if filter.ConfigID > 0 {
		args = append(args, filter.ConfigID)
		query += fmt.Sprintf(" AND config_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload operations: %w", err)
	}
	defer rows.Close()

	ops := []domain.UploadOperation{}
	for rows.Next() {
		op, scanErr := scanUploadOperation(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan upload operation: %w", scanErr)
		}
		ops = append(ops, op)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate upload operations: %w", rowsErr)
	}

	return ops, nil
}

func (r *uploadOperationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if r.pool == nil {
		return fmt.Errorf("upload operation repository not initialized")
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE upload_operations SET deleted_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete upload operation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUploadOperation(row pgx.Row) (domain.UploadOperation, error) {
	var (
		op          domain.UploadOperation
		filePath    pgtype.Text
		completedAt pgtype.Timestamptz
		deletedAt   pgtype.Timestamptz
	)
	if err := row.Scan(
		&op.ID,
		&op.ConfigID,
		&op.FileName,
		&filePath,
		&op.FileSize,
		&op.Status,
		&op.ErrorCount,
		&op.TotalRows,
		&op.ValidRows,
		&op.StartedAt,
		&completedAt,
		&deletedAt,
	); err != nil {
		return domain.UploadOperation{}, err
	}

	op.FilePath = filePath.String
	if completedAt.Valid {
		op.CompletedAt = &completedAt.Time
	}
	if deletedAt.Valid {
		op.DeletedAt = &deletedAt.Time
	}

	return op, nil
}
