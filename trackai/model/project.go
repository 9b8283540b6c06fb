package model

import "time"

const (
	ProjectStatusActive = "active"
	ProjectStatusClosed = "closed"
)

// Project is the local mirror of a Saras project, keyed by the external id
// used as the correlation key with the upstream system.
type Project struct {
	ID          uint    `gorm:"primaryKey;column:id" json:"id"`
	ExternalID  string  `gorm:"column:external_id;not null;uniqueIndex" json:"external_id"`
	ContractID  string  `gorm:"column:contract_id;not null" json:"contract_id"`
	Name        string  `gorm:"column:name;not null" json:"name"`
	Description *string `gorm:"column:description;type:text" json:"description"`
	Status      string  `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`
	Location    *string `gorm:"column:location" json:"location"`
	StartDate   *string `gorm:"column:start_date" json:"start_date"`
	EndDate     *string `gorm:"column:end_date" json:"end_date"`
	TenantID    *string `gorm:"column:tenant_id" json:"tenant_id"`
	TenantName  *string `gorm:"column:tenant_name" json:"tenant_name"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) IsClosed() bool {
	return p.Status == ProjectStatusClosed
}
