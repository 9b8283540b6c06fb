package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
)

type UploadStore struct {
	db *gorm.DB
}

func NewUploadStore(db *gorm.DB) *UploadStore {
	return &UploadStore{db: db}
}

func (s *UploadStore) Create(ctx context.Context, upload *model.Upload) error {
	err := s.db.WithContext(ctx).Create(upload).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrDuplicateRequest
	}
	return err
}

func (s *UploadStore) Save(ctx context.Context, upload *model.Upload) error {
	return s.db.WithContext(ctx).Save(upload).Error
}

func (s *UploadStore) Find(ctx context.Context, id uint) (*model.Upload, error) {
	var upload model.Upload
	err := s.db.WithContext(ctx).Preload("Project").First(&upload, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (s *UploadStore) FindByClientRequestID(ctx context.Context, clientRequestID string) (*model.Upload, error) {
	var upload model.Upload
	err := s.db.WithContext(ctx).
		Where("client_request_id = ?", clientRequestID).
		First(&upload).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (s *UploadStore) HardDelete(ctx context.Context, upload *model.Upload) error {
	return s.db.WithContext(ctx).Unscoped().Delete(upload).Error
}

func (s *UploadStore) SoftDelete(ctx context.Context, upload *model.Upload) error {
	return s.db.WithContext(ctx).Delete(upload).Error
}

func (s *UploadStore) ListForProject(ctx context.Context, projectID uint) ([]model.Upload, error) {
	var uploads []model.Upload
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&uploads).Error
	return uploads, err
}
