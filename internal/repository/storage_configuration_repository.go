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

type storageConfigurationRepository struct {
	pool *pgxpool.Pool
}

// NewStorageConfigurationRepository wires a repository backed by pgxpool.
func NewStorageConfigurationRepository(pool *pgxpool.Pool) StorageConfigurationRepository {
	return &storageConfigurationRepository{pool: pool}
}

func (r *storageConfigurationRepository) Create(ctx context.Context, cfg domain.StorageConfiguration) (domain.StorageConfiguration, error) {
	if r.pool == nil {
		return domain.StorageConfiguration{}, fmt.Errorf("storage configuration repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO storage_configurations
		   (name, storage_type, base_path, path_template, bucket_name, region, endpoint, access_type,
		    access_key_id, secret_access_key, account_name, account_key, key_file_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		cfg.Name,
		cfg.StorageType,
		cfg.BasePath,
		cfg.PathTemplate,
		cfg.BucketName,
		cfg.Region,
		cfg.Endpoint,
		cfg.AccessType,
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		cfg.AccountName,
		cfg.AccountKey,
		cfg.KeyFilePath,
	)
	if err := row.Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return domain.StorageConfiguration{}, fmt.Errorf("failed to create storage configuration: %w", err)
	}

	return cfg, nil
}

func (r *storageConfigurationRepository) GetByID(ctx context.Context, id int64) (domain.StorageConfiguration, error) {
	if r.pool == nil {
		return domain.StorageConfiguration{}, fmt.Errorf("storage configuration repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, storage_type, base_path, path_template, bucket_name, region, endpoint, access_type,
		        access_key_id, secret_access_key, account_name, account_key, key_file_path,
		        created_at, updated_at, deleted_at
		 FROM storage_configurations
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)

	cfg, err := scanStorageConfiguration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StorageConfiguration{}, ErrNotFound
		}
		return domain.StorageConfiguration{}, fmt.Errorf("failed to get storage configuration: %w", err)
	}

	return cfg, nil
}

func (r *storageConfigurationRepository) List(ctx context.Context) ([]domain.StorageConfiguration, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("storage configuration repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, storage_type, base_path, path_template, bucket_name, region, endpoint, access_type,
		        access_key_id, secret_access_key, account_name, account_key, key_file_path,
		        created_at, updated_at, deleted_at
		 FROM storage_configurations
		 WHERE deleted_at IS NULL
		 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage configurations: %w", err)
	}
	defer rows.Close()

	configs := []domain.StorageConfiguration{}
	for rows.Next() {
		cfg, scanErr := scanStorageConfiguration(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan storage configuration: %w", scanErr)
		}
		configs = append(configs, cfg)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate storage configurations: %w", rowsErr)
	}

	return configs, nil
}

func (r *storageConfigurationRepository) Update(ctx context.Context, cfg domain.StorageConfiguration) (domain.StorageConfiguration, error) {
	if r.pool == nil {
		return domain.StorageConfiguration{}, fmt.Errorf("storage configuration repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`UPDATE storage_configurations
		 SET name = $2, storage_type = $3, base_path = $4, path_template = $5, bucket_name = $6,
		     region = $7, endpoint = $8, access_type = $9, access_key_id = $10, secret_access_key = $11,
		     account_name = $12, account_key = $13, key_file_path = $14, updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING created_at, updated_at`,
		cfg.ID,
		cfg.Name,
		cfg.StorageType,
		cfg.BasePath,
		cfg.PathTemplate,
		cfg.BucketName,
		cfg.Region,
		cfg.Endpoint,
		cfg.AccessType,
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		cfg.AccountName,
		cfg.AccountKey,
		cfg.KeyFilePath,
	)
	if err := row.Scan(&cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StorageConfiguration{}, ErrNotFound
		}
		return domain.StorageConfiguration{}, fmt.Errorf("failed to update storage configuration: %w", err)
	}

	return cfg, nil
}

func (r *storageConfigurationRepository) SoftDelete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("storage configuration repository not initialized")
	}

	var inUse bool
	err := r.pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM upload_configurations
		   WHERE storage_config_id = $1 AND deleted_at IS NULL
		 )`,
		id,
	).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("failed to check storage configuration references: %w", err)
	}
	if inUse {
		return ErrInUse
	}

	tag, err := r.pool.Exec(
		ctx,
		`UPDATE storage_configurations SET deleted_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete storage configuration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStorageConfiguration(row pgx.Row) (domain.StorageConfiguration, error) {
	var (
		cfg       domain.StorageConfiguration
		region    pgtype.Text
		endpoint  pgtype.Text
		access    pgtype.Text
		keyID     pgtype.Text
		secret    pgtype.Text
		account   pgtype.Text
		key       pgtype.Text
		keyFile   pgtype.Text
		deletedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.StorageType,
		&cfg.BasePath,
		&cfg.PathTemplate,
		&cfg.BucketName,
		&region,
		&endpoint,
		&access,
		&keyID,
		&secret,
		&account,
		&key,
		&keyFile,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
		&deletedAt,
	); err != nil {
		return domain.StorageConfiguration{}, err
	}

	cfg.Region = region.String
	cfg.Endpoint = endpoint.String
	cfg.AccessType = access.String
	cfg.AccessKeyID = keyID.String
	cfg.SecretAccessKey = secret.String
	cfg.AccountName = account.String
	cfg.AccountKey = key.String
	cfg.KeyFilePath = keyFile.String
	if deletedAt.Valid {
		cfg.DeletedAt = &deletedAt.Time
	}

	return cfg, nil
}
