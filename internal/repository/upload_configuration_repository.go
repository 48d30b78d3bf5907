package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowgate/rowgate/internal/domain"
)

type uploadConfigurationRepository struct {
	pool *pgxpool.Pool
}

// NewUploadConfigurationRepository wires a repository backed by pgxpool.
func NewUploadConfigurationRepository(pool *pgxpool.Pool) UploadConfigurationRepository {
	return &uploadConfigurationRepository{pool: pool}
}

func (r *uploadConfigurationRepository) Create(ctx context.Context, cfg domain.UploadConfiguration) (domain.UploadConfiguration, error) {
	if r.pool == nil {
		return domain.UploadConfiguration{}, fmt.Errorf("upload configuration repository not initialized")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.UploadConfiguration{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(
		ctx,
		`INSERT INTO upload_configurations
		   (name, file_type, delimiter, max_file_size, max_rows, allow_partial_upload, storage_config_id, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		cfg.Name,
		cfg.FileType,
		cfg.Delimiter,
		cfg.MaxFileSize,
		cfg.MaxRows,
		cfg.AllowPartialUpload,
		cfg.StorageConfigID,
		cfg.Active,
	)
	if err := row.Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return domain.UploadConfiguration{}, fmt.Errorf("failed to create upload configuration: %w", err)
	}

	columns, err := insertColumns(ctx, tx, cfg.ID, cfg.Columns)
	if err != nil {
		return domain.UploadConfiguration{}, err
	}
	cfg.Columns = columns

	if err := tx.Commit(ctx); err != nil {
		return domain.UploadConfiguration{}, fmt.Errorf("failed to commit upload configuration: %w", err)
	}

	return cfg, nil
}

func (r *uploadConfigurationRepository) GetByID(ctx context.Context, id int64) (domain.UploadConfiguration, error) {
	if r.pool == nil {
		return domain.UploadConfiguration{}, fmt.Errorf("upload configuration repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, file_type, delimiter, max_file_size, max_rows, allow_partial_upload,
		        storage_config_id, active, created_at, updated_at, deleted_at
		 FROM upload_configurations
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)

	cfg, err := scanUploadConfiguration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UploadConfiguration{}, ErrNotFound
		}
		return domain.UploadConfiguration{}, fmt.Errorf("failed to get upload configuration: %w", err)
	}

	columns, err := r.listColumns(ctx, cfg.ID)
	if err != nil {
		return domain.UploadConfiguration{}, err
	}
	cfg.Columns = columns

	return cfg, nil
}

func (r *uploadConfigurationRepository) List(ctx context.Context, includeInactive bool) ([]domain.UploadConfiguration, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("upload configuration repository not initialized")
	}

	query := `SELECT id, name, file_type, delimiter, max_file_size, max_rows, allow_partial_upload,
	                 storage_config_id, active, created_at, updated_at, deleted_at
	          FROM upload_configurations
	          WHERE deleted_at IS NULL`
	if !includeInactive {
		query += ` AND active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload configurations: %w", err)
	}
	defer rows.Close()

	configs := []domain.UploadConfiguration{}
	for rows.Next() {
		cfg, scanErr := scanUploadConfiguration(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan upload configuration: %w", scanErr)
		}
		configs = append(configs, cfg)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate upload configurations: %w", rowsErr)
	}

	for i := range configs {
		columns, colErr := r.listColumns(ctx, configs[i].ID)
		if colErr != nil {
			return nil, colErr
		}
		configs[i].Columns = columns
	}

	return configs, nil
}

func (r *uploadConfigurationRepository) Update(ctx context.Context, cfg domain.UploadConfiguration) (domain.UploadConfiguration, error) {
	if r.pool == nil {
		return domain.UploadConfiguration{}, fmt.Errorf("upload configuration repository not initialized")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.UploadConfiguration{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(
		ctx,
		`UPDATE upload_configurations
		 SET name = $2, file_type = $3, delimiter = $4, max_file_size = $5, max_rows = $6,
		     allow_partial_upload = $7, storage_config_id = $8, active = $9, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING created_at, updated_at`,
		cfg.ID,
		cfg.Name,
		cfg.FileType,
		cfg.Delimiter,
		cfg.MaxFileSize,
		cfg.MaxRows,
		cfg.AllowPartialUpload,
		cfg.StorageConfigID,
		cfg.Active,
	)
	if err := row.Scan(&cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UploadConfiguration{}, ErrNotFound
		}
		return domain.UploadConfiguration{}, fmt.Errorf("failed to update upload configuration: %w", err)
	}

	// Column lists are replaced wholesale, never diffed.
	if _, err := tx.Exec(ctx, `DELETE FROM column_schemas WHERE config_id = $1`, cfg.ID); err != nil {
		return domain.UploadConfiguration{}, fmt.Errorf("failed to clear column schemas: %w", err)
	}
	columns, err := insertColumns(ctx, tx, cfg.ID, cfg.Columns)
	if err != nil {
		return domain.UploadConfiguration{}, err
	}
	cfg.Columns = columns

	if err := tx.Commit(ctx); err != nil {
		return domain.UploadConfiguration{}, fmt.Errorf("failed to commit upload configuration: %w", err)
	}

	return cfg, nil
}

func (r *uploadConfigurationRepository) SoftDelete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("upload configuration repository not initialized")
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE upload_configurations SET deleted_at = NOW(), active = FALSE
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete upload configuration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *uploadConfigurationRepository) listColumns(ctx context.Context, configID int64) ([]domain.ColumnSchema, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, display_name, data_type, required, pattern,
		        min_length, max_length, min_value, max_value, custom_validator, position
		 FROM column_schemas
		 WHERE config_id = $1
		 ORDER BY position`,
		configID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list column schemas: %w", err)
	}
	defer rows.Close()

	columns := []domain.ColumnSchema{}
	for rows.Next() {
		var (
			col       domain.ColumnSchema
			pattern   pgtype.Text
			minLen    pgtype.Int4
			maxLen    pgtype.Int4
			minVal    pgtype.Float8
			maxVal    pgtype.Float8
			validator pgtype.Text
		)
		if scanErr := rows.Scan(
			&col.ID,
			&col.Name,
			&col.DisplayName,
			&col.DataType,
			&col.Required,
			&pattern,
			&minLen,
			&maxLen,
			&minVal,
			&maxVal,
			&validator,
			&col.Position,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan column schema: %w", scanErr)
		}

		col.Pattern = pattern.String
		col.CustomValidator = validator.String
		if minLen.Valid {
			value := int(minLen.Int32)
			col.MinLength = &value
		}
		if maxLen.Valid {
			value := int(maxLen.Int32)
			col.MaxLength = &value
		}
		if minVal.Valid {
			value := minVal.Float64
			col.MinValue = &value
		}
		if maxVal.Valid {
			value := maxVal.Float64
			col.MaxValue = &value
		}

		columns = append(columns, col)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate column schemas: %w", rowsErr)
	}

	return columns, nil
}

func insertColumns(ctx context.Context, tx pgx.Tx, configID int64, columns []domain.ColumnSchema) ([]domain.ColumnSchema, error) {
	inserted := make([]domain.ColumnSchema, len(columns))
	for i, col := range columns {
		var pattern, validator any
		if col.Pattern != "" {
			pattern = col.Pattern
		}
		if col.CustomValidator != "" {
			validator = col.CustomValidator
		}

		row := tx.QueryRow(
			ctx,
			`INSERT INTO column_schemas
			   (config_id, name, display_name, data_type, required, pattern,
			    min_length, max_length, min_value, max_value, custom_validator, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 RETURNING id`,
			configID,
			col.Name,
			col.DisplayName,
			col.DataType,
			col.Required,
			pattern,
			col.MinLength,
			col.MaxLength,
			col.MinValue,
			col.MaxValue,
			validator,
			col.Position,
		)
		if err := row.Scan(&col.ID); err != nil {
			return nil, fmt.Errorf("failed to insert column schema %q: %w", col.Name, err)
		}
		inserted[i] = col
	}
	return inserted, nil
}

func scanUploadConfiguration(row pgx.Row) (domain.UploadConfiguration, error) {
	var (
		cfg       domain.UploadConfiguration
		deletedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.FileType,
		&cfg.Delimiter,
		&cfg.MaxFileSize,
		&cfg.MaxRows,
		&cfg.AllowPartialUpload,
		&cfg.StorageConfigID,
		&cfg.Active,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
		&deletedAt,
	); err != nil {
		return domain.UploadConfiguration{}, err
	}
	if deletedAt.Valid {
		cfg.DeletedAt = &deletedAt.Time
	}
	return cfg, nil
}
