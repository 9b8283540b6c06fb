package model

import "time"

// User is an authenticated field engineer. The saras_* columns hold the
// per-user API credential written by the login flow; they are empty when the
// service-account token manager is in use.
type User struct {
	ID          uint    `gorm:"primaryKey;column:id" json:"id"`
	Name        string  `gorm:"column:name;not null" json:"name"`
	Email       string  `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Username    string  `gorm:"column:username;not null" json:"username"`
	Password    string  `gorm:"column:password;not null" json:"-"`
	SarasUserID *string `gorm:"column:saras_user_id" json:"saras_user_id"`
	TenantID    *string `gorm:"column:tenant_id" json:"tenant_id"`
	TenantName  *string `gorm:"column:tenant_name" json:"tenant_name"`

	SarasAccessToken    *string    `gorm:"column:saras_access_token;type:text" json:"-"`
	SarasTokenExpiresAt *time.Time `gorm:"column:saras_token_expires_at" json:"-"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
