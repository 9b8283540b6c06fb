package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
)

const projectSyncPageSize = 50

// ProjectSyncService mirrors the caller's Saras projects into the local
// projects table so uploads and attendance can resolve them offline.
type ProjectSyncService struct {
	client   saras.Client
	projects store.ProjectStore
	log      *zap.Logger
}

func NewProjectSyncService(client saras.Client, projects store.ProjectStore, log *zap.Logger) *ProjectSyncService {
	return &ProjectSyncService{client: client, projects: projects, log: log}
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Synced  bool   `json:"synced"`
	Count   int    `json:"count"`
	Pages   int    `json:"pages"`
	Message string `json:"message,omitempty"`
}

// Sync pulls every page of the caller's projects and upserts them by
// external id. Saras failures are reported as a non-synced result, not an
// error.
func (s *ProjectSyncService) Sync(ctx context.Context) (SyncResult, error) {
	var (
		count int
		page  = 1
	)
	for {
		response, err := s.client.GetProjectsForUser(ctx, page, projectSyncPageSize)
		if err != nil {
			if apiErr, ok := saras.AsAPIError(err); ok {
				return SyncResult{Message: apiErr.Message}, nil
			}
			return SyncResult{}, err
		}

		for _, remote := range response.Projects {
			if remote.ExternalID == "" {
				continue
			}
			project := &model.Project{
				ExternalID: remote.ExternalID,
				ContractID: remote.ContractID,
				Name:       remote.Name,
				Status:     remote.Status,
			}
			if remote.Description != "" {
				project.Description = &remote.Description
			}
			if remote.Location != "" {
				project.Location = &remote.Location
			}
			if remote.TenantID != "" {
				project.TenantID = &remote.TenantID
			}
			if remote.TenantName != "" {
				project.TenantName = &remote.TenantName
			}
			if err := s.projects.Upsert(ctx, project); err != nil {
				return SyncResult{}, fmt.Errorf("upsert project %s: %w", remote.ExternalID, err)
			}
			count++
		}

		if page >= response.TotalPages {
			s.log.Info("projects: sync complete",
				zap.Int("count", count),
				zap.Int("pages", page),
			)
			return SyncResult{Synced: true, Count: count, Pages: page}, nil
		}
		page++
	}
}
