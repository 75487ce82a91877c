package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SnapshotProduct is the lightweight per-product record captured before an
// inventory upload. Only the fields an upload can mutate are recorded.
type SnapshotProduct struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Stock         int       `json:"stock"`
}

// SnapshotProducts is stored as a single JSONB column
type SnapshotProducts []SnapshotProduct

func (s SnapshotProducts) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SnapshotProducts) Scan(value interface{}) error {
	if value == nil {
		*s = make(SnapshotProducts, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// InventorySnapshot is a point-in-time capture of all products taken
// immediately before an upload's first write. Immutable once created; it is
// the source of truth for rollback.
type InventorySnapshot struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string           `json:"name" gorm:"not null"`
	Products     SnapshotProducts `json:"products" gorm:"type:jsonb;not null"`
	ProductCount int              `json:"productCount" gorm:"not null"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// InventoryUploadLog is the append-only audit record of one upload.
type InventoryUploadLog struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Filename   string      `json:"filename" gorm:"not null"`
	SnapshotID *uuid.UUID  `json:"snapshotId,omitempty" gorm:"type:uuid;index"`
	Updated    int         `json:"updated" gorm:"not null;default:0"`
	Created    int         `json:"created" gorm:"not null;default:0"`
	Deleted    int         `json:"deleted" gorm:"not null;default:0"`
	Errors     StringArray `json:"errors,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// UploadStats summarizes one upload for the API response
type UploadStats struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Created int `json:"created"`
	Errors  int `json:"errors"`
}

// UploadResponse is the inventory upload response envelope.
// Errors carries at most the first MaxVisibleUploadErrors row errors; the full
// list is persisted in the upload log.
type UploadResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Stats      UploadStats `json:"stats"`
	Errors     []string    `json:"errors,omitempty"`
	SnapshotID *uuid.UUID  `json:"snapshotId,omitempty"`
}

// MaxVisibleUploadErrors caps row errors returned in upload responses.
const MaxVisibleUploadErrors = 10

// RollbackResult reports what a snapshot rollback changed
type RollbackResult struct {
	Restored int `json:"restored"`
	Created  int `json:"created"`
}
