package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is an append-only record of attendance/upload/progress actions.
// Written by the services, never read by them.
type AuditLog struct {
	ID         uint           `gorm:"primaryKey;column:id" json:"id"`
	UserID     uint           `gorm:"column:user_id;not null;index" json:"user_id"`
	Action     string         `gorm:"column:action;not null;index" json:"action"`
	ContractID *string        `gorm:"column:contract_id" json:"contract_id"`
	Context    datatypes.JSON `gorm:"column:context" json:"context"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
