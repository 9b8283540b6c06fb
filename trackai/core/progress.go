package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/trackai/store"
)

const (
	AIStatusDisabled       = "disabled"
	AIStatusNotImplemented = "not_implemented"
)

// ProgressService submits progress reports to Saras. The whole integration
// sits behind a feature flag: with the flag off every submission is recorded
// as a local-only success and no remote call is made.
type ProgressService struct {
	client saras.Client
	audit  store.AuditSink
	cfg    saras.Config
	log    *zap.Logger

	Now func() time.Time
}

func NewProgressService(client saras.Client, audit store.AuditSink, cfg saras.Config, log *zap.Logger) *ProgressService {
	return &ProgressService{
		client: client,
		audit:  audit,
		cfg:    cfg,
		log:    log,
		Now:    time.Now,
	}
}

// ProgressParams are the caller-supplied progress report fields.
type ProgressParams struct {
	UserID          uint
	ContractID      string
	Description     string
	PercentComplete float64
	Latitude        float64
	Longitude       float64
	IPAddress       string
	ClientRequestID string
}

func (s *ProgressService) enabled() bool {
	return s.cfg.Features.Enabled && s.cfg.Features.ProgressEnabled
}

// SubmitProgress creates a progress entry. Disabled integrations get a
// synthesized success with a local_ entry id so the client flow is
// unchanged.
func (s *ProgressService) SubmitProgress(ctx context.Context, p ProgressParams) (saras.ProcessResponse, error) {
	if !s.enabled() {
		return s.localResponse(p), nil
	}

	idempotencyKey := p.ClientRequestID
	if idempotencyKey == "" {
		idempotencyKey = fallbackKey("progress", "submit", p.UserID, p.ContractID, s.Now())
	}

	now := s.Now()
	response, err := s.client.CreateProcess(ctx, s.cfg.SubProjects.Progress, map[string]any{
		"userId":          p.UserID,
		"contractId":      p.ContractID,
		"description":     p.Description,
		"percentComplete": p.PercentComplete,
		"ipAddress":       p.IPAddress,
		"geoLocation":     fmt.Sprintf("%v,%v", p.Latitude, p.Longitude),
		"date":            now.Format("2006-01-02"),
		"time":            now.Format("15:04:05"),
	}, idempotencyKey)
	if err != nil {
		if apiErr, ok := saras.AsAPIError(err); ok {
			return saras.FailedProcessResponse(apiErr.Message), nil
		}
		return saras.ProcessResponse{}, err
	}

	if response.Success {
		s.audit.Log(ctx, p.UserID, "progress_submitted", p.ContractID, map[string]any{
			"entry_id":         response.EntryID,
			"idempotency_key":  idempotencyKey,
			"percent_complete": p.PercentComplete,
		})
	}
	return response, nil
}

// UploadPhoto pushes a progress photo to Saras storage and returns the
// remote file id. Disabled integrations get a local_ file id.
func (s *ProgressService) UploadPhoto(ctx context.Context, userID uint, name string, photo saras.FileAttachment) (saras.FileUploadResponse, error) {
	if !s.enabled() {
		return saras.FileUploadResponse{
			Success: true,
			FileIDs: []string{"local_" + randomSuffix()},
		}, nil
	}

	response, err := s.client.UploadFiles(ctx, []saras.FileAttachment{photo})
	if err != nil {
		if apiErr, ok := saras.AsAPIError(err); ok {
			return saras.FileUploadResponse{Success: false, Message: apiErr.Message}, nil
		}
		return saras.FileUploadResponse{}, err
	}

	s.log.Info("progress: photo uploaded",
		zap.Uint("user_id", userID),
		zap.String("name", name),
		zap.String("file_id", response.FirstFileID()),
	)
	return response, nil
}

// RunAIAnalysis triggers the remote analysis workflow. The workflow is not
// wired up yet on the Saras side, so the enabled path reports
// not_implemented instead of executing.
func (s *ProgressService) RunAIAnalysis(ctx context.Context, userID uint, contractID string) (saras.WorkflowResponse, error) {
	if !s.enabled() {
		return saras.WorkflowResponse{Success: false, Status: AIStatusDisabled}, nil
	}
	return saras.WorkflowResponse{
		Success: false,
		Status:  AIStatusNotImplemented,
		Message: "AI analysis is not available yet",
	}, nil
}

// AIStatus reports the state of a previously triggered analysis workflow.
func (s *ProgressService) AIStatus(ctx context.Context, workflowID string) (saras.WorkflowResponse, error) {
	if !s.enabled() {
		return saras.WorkflowResponse{Success: false, Status: AIStatusDisabled, WorkflowID: workflowID}, nil
	}
	return saras.WorkflowResponse{
		Success:    false,
		Status:     AIStatusNotImplemented,
		WorkflowID: workflowID,
		Message:    "AI analysis is not available yet",
	}, nil
}

func (s *ProgressService) localResponse(p ProgressParams) saras.ProcessResponse {
	return saras.ProcessResponse{
		Success:   true,
		EntryID:   "local_" + randomSuffix(),
		CreatedAt: s.Now().Format(time.RFC3339),
		Message:   "Progress recorded locally; Saras progress sync is disabled",
	}
}
