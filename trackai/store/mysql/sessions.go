package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"trackai.dev/trackai/trackai/model"
)

type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, session *model.AttendanceSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *SessionStore) Update(ctx context.Context, session *model.AttendanceSession) error {
	return s.db.WithContext(ctx).Save(session).Error
}

func (s *SessionStore) LatestOpen(ctx context.Context, userID uint, projectExternalID string) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND project_external_id = ? AND status = ?",
			userID, projectExternalID, model.SessionStatusOpen).
		Order("check_in_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) LatestOpenCheckedInBefore(ctx context.Context, userID uint, before time.Time) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND check_in_at < ?",
			userID, model.SessionStatusOpen, before).
		Order("check_in_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) OpenCheckedInBefore(ctx context.Context, cutoff time.Time) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	err := s.db.WithContext(ctx).
		Where("status = ? AND check_in_at < ?", model.SessionStatusOpen, cutoff).
		Order("check_in_at").
		Find(&sessions).Error
	return sessions, err
}

func (s *SessionStore) ListForUser(ctx context.Context, userID uint, from, to time.Time) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND check_in_at >= ? AND check_in_at < ?", userID, from, to).
		Order("check_in_at").
		Find(&sessions).Error
	return sessions, err
}
