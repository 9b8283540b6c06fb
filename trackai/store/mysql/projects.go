package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
)

type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) FindByExternalID(ctx context.Context, externalID string) (*model.Project, error) {
	var project model.Project
	err := s.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectStore) Upsert(ctx context.Context, project *model.Project) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"contract_id", "name", "description", "status", "location",
				"start_date", "end_date", "tenant_id", "tenant_name",
			}),
		}).
		Create(project).Error
}

func (s *ProjectStore) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).Order("name").Find(&projects).Error
	return projects, err
}
