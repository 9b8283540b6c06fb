package v1

import (
	"context"

	"go.uber.org/zap"
)

// Client is the contract for all Saras operations. The stub and live
// implementations are interchangeable; callers never branch on mode except
// through IsStubMode for status reporting.
type Client interface {
	IsStubMode() bool
	GetUserDetails(ctx context.Context) (UserDetails, error)
	GetProjectsForUser(ctx context.Context, page, perPage int) (ProjectsResponse, error)
	CreateProcess(ctx context.Context, subProjectID string, fields map[string]any, idempotencyKey string) (ProcessResponse, error)
	UploadFiles(ctx context.Context, files []FileAttachment) (FileUploadResponse, error)
	ExecuteWorkflow(ctx context.Context, workflowID string, otherDetails, payload map[string]any) (WorkflowResponse, error)
}

// NewClient is the single composition point deciding stub vs live. The
// token manager is only consulted in live mode.
func NewClient(cfg Config, tokens TokenManager, log *zap.Logger) Client {
	if cfg.Mode == ModeLive {
		return NewLiveClient(cfg, tokens, log)
	}
	return NewStubClient(cfg)
}
