package domain

import "time"

// StorageType identifies a storage backend variant.
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeGCS   StorageType = "gcs"
	StorageTypeAzure StorageType = "azure"
	StorageTypeLocal StorageType = "local"
)

// StorageConfiguration holds the destination and credentials for one storage
// backend. Upload configurations reference it by id rather than embedding it,
// so credentials can be rotated in one place.
type StorageConfiguration struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	StorageType StorageType `json:"storage_type"`
	BasePath    string      `json:"base_path"`
	// PathTemplate contains the placeholders {base_path}, {uuid} and {ext}.
	PathTemplate string `json:"path_template"`
	// BucketName is the S3/GCS bucket or the Azure container.
	BucketName string `json:"bucket_name"`
	Region     string `json:"region,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"` // S3-compatible endpoints
	AccessType string `json:"access_type,omitempty"`

	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	AccountName     string `json:"account_name,omitempty"`
	AccountKey      string `json:"account_key,omitempty"`
	KeyFilePath     string `json:"key_file_path,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
