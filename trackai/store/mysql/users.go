package mysql

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Find(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Save(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// AuditStore writes audit records to the audit_logs table.
type AuditStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAuditStore(db *gorm.DB, log *zap.Logger) *AuditStore {
	return &AuditStore{db: db, log: log}
}

func (s *AuditStore) Log(ctx context.Context, userID uint, action string, contractID string, details map[string]any) {
	var contract *string
	if contractID != "" {
		contract = &contractID
	}

	var payload datatypes.JSON
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = raw
		}
	}

	// Best effort: an audit failure never fails the audited operation.
	err := s.db.WithContext(ctx).Create(&model.AuditLog{
		UserID:     userID,
		Action:     action,
		ContractID: contract,
		Context:    payload,
	}).Error
	if err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}
