package model

import "time"

const (
	SessionStatusOpen       = "open"
	SessionStatusClosed     = "closed"
	SessionStatusAutoClosed = "auto_closed"

	AutoCloseReasonEndOfDay    = "end_of_day"
	AutoCloseReasonPreviousDay = "previous_day_unclosed"
)

// AttendanceSession is one check-in/check-out cycle for a user on a project.
// Sessions are never reopened: a new check-in always creates a new row.
type AttendanceSession struct {
	ID                uint   `gorm:"primaryKey;column:id" json:"id"`
	UserID            uint   `gorm:"column:user_id;not null;index:idx_sessions_user_status,priority:1" json:"user_id"`
	ProjectExternalID string `gorm:"column:project_external_id;not null" json:"project_external_id"`

	CheckInAt        time.Time `gorm:"column:check_in_at;not null" json:"check_in_at"`
	CheckInLatitude  float64   `gorm:"column:check_in_latitude;type:decimal(10,7)" json:"check_in_latitude"`
	CheckInLongitude float64   `gorm:"column:check_in_longitude;type:decimal(10,7)" json:"check_in_longitude"`
	CheckInRemarks   *string   `gorm:"column:check_in_remarks;type:text" json:"check_in_remarks"`

	CheckOutAt        *time.Time `gorm:"column:check_out_at" json:"check_out_at"`
	CheckOutLatitude  *float64   `gorm:"column:check_out_latitude;type:decimal(10,7)" json:"check_out_latitude"`
	CheckOutLongitude *float64   `gorm:"column:check_out_longitude;type:decimal(10,7)" json:"check_out_longitude"`
	CheckOutRemarks   *string    `gorm:"column:check_out_remarks;type:text" json:"check_out_remarks"`

	Status           string  `gorm:"column:status;type:varchar(20);not null;default:open;index:idx_sessions_user_status,priority:2" json:"status"`
	AutoClosedReason *string `gorm:"column:auto_closed_reason;type:varchar(40)" json:"auto_closed_reason"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updated_at"`
}

func (AttendanceSession) TableName() string {
	return "attendance_sessions"
}

func (s *AttendanceSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}

func (s *AttendanceSession) WasAutoClosed() bool {
	return s.Status == SessionStatusAutoClosed
}

// DurationMinutes is checkout minus checkin in whole minutes, nil while the
// session is still open.
func (s *AttendanceSession) DurationMinutes() *int {
	if s.CheckOutAt == nil {
		return nil
	}
	minutes := int(s.CheckOutAt.Sub(s.CheckInAt).Minutes())
	return &minutes
}
