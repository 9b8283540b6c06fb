package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	UploadStatusPending   = "pending"
	UploadStatusUploading = "uploading"
	UploadStatusUploaded  = "uploaded"
	UploadStatusFailed    = "failed"
	UploadStatusDeleted   = "deleted"
)

// Upload is a document queued for the two-step sync to Saras. The record is
// created pending with no remote state; entry_id and remote_file_id stay
// null until the sync succeeds.
type Upload struct {
	ID        uint  `gorm:"primaryKey;column:id" json:"id"`
	ProjectID *uint `gorm:"column:project_id" json:"project_id"`
	UserID    uint  `gorm:"column:user_id;not null;index" json:"user_id"`

	ContractID   string  `gorm:"column:contract_id;not null;index:idx_uploads_contract_status,priority:1" json:"contract_id"`
	EntryID      *string `gorm:"column:entry_id" json:"entry_id"`
	RemoteFileID *string `gorm:"column:remote_file_id" json:"remote_file_id"`

	Title        string         `gorm:"column:title;not null" json:"title"`
	Remarks      *string        `gorm:"column:remarks;type:text" json:"remarks"`
	DocumentType string         `gorm:"column:document_type;not null" json:"document_type"`
	Tags         datatypes.JSON `gorm:"column:tags" json:"tags"`
	Mime         *string        `gorm:"column:mime" json:"mime"`
	Size         *int64         `gorm:"column:size" json:"size"`

	Status    string  `gorm:"column:status;type:varchar(20);not null;default:pending;index:idx_uploads_contract_status,priority:2" json:"status"`
	LastError *string `gorm:"column:last_error;type:text" json:"last_error"`

	// Idempotency key supplied by the client; globally unique and immutable.
	ClientRequestID string `gorm:"column:client_request_id;not null;uniqueIndex" json:"client_request_id"`

	LockedAt     *time.Time `gorm:"column:locked_at" json:"locked_at"`
	LockedReason *string    `gorm:"column:locked_reason" json:"locked_reason"`

	CreatedAt time.Time      `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"created_at"`
	UpdatedAt time.Time      `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (Upload) TableName() string {
	return "uploads"
}

func (u *Upload) IsPending() bool {
	return u.Status == UploadStatusPending
}

func (u *Upload) IsUploaded() bool {
	return u.Status == UploadStatusUploaded
}

func (u *Upload) IsFailed() bool {
	return u.Status == UploadStatusFailed
}

// IsLocked reports whether the lock axis is set. Locking is permanent: there
// is no unlock operation.
func (u *Upload) IsLocked() bool {
	return u.LockedAt != nil
}

func (u *Upload) IsEditable() bool {
	if u.IsLocked() {
		return false
	}
	if u.Status == UploadStatusDeleted {
		return false
	}
	if u.Project != nil && u.Project.IsClosed() {
		return false
	}
	return true
}

func (u *Upload) IsDeletable() bool {
	return u.IsEditable()
}

func (u *Upload) IsRetryable() bool {
	return u.Status == UploadStatusFailed && !u.IsLocked()
}
