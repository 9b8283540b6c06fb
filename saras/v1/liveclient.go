package v1

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LiveClient talks to the real Saras API through the Transport.
type LiveClient struct {
	transport *Transport
	cfg       Config
	log       *zap.Logger
}

func NewLiveClient(cfg Config, tokens TokenManager, log *zap.Logger) *LiveClient {
	return &LiveClient{
		transport: NewTransport(cfg, tokens, log),
		cfg:       cfg,
		log:       log,
	}
}

func (c *LiveClient) IsStubMode() bool {
	return false
}

func (c *LiveClient) GetUserDetails(ctx context.Context) (UserDetails, error) {
	requestID := uuid.NewString()
	c.log.Info("saras: getUserDetails",
		zap.String("request_id", requestID),
		zap.String("endpoint", "/users/getUserDetails"),
	)

	data, err := c.transport.Get(ctx, "/users/getUserDetails", nil)
	if err != nil {
		return UserDetails{}, err
	}
	return UserDetailsFromMap(data), nil
}

func (c *LiveClient) GetProjectsForUser(ctx context.Context, page, perPage int) (ProjectsResponse, error) {
	requestID := uuid.NewString()
	c.log.Info("saras: getProjectsForUser",
		zap.String("request_id", requestID),
		zap.Int("page", page),
		zap.Int("per_page", perPage),
	)

	data, err := c.transport.Get(ctx, "/process/projects/getProjectsForUser", map[string]string{
		"page":         strconv.Itoa(page),
		"perPageCount": strconv.Itoa(perPage),
	})
	if err != nil {
		return ProjectsResponse{}, err
	}
	return ProjectsResponseFromMap(data), nil
}

func (c *LiveClient) CreateProcess(ctx context.Context, subProjectID string, fields map[string]any, idempotencyKey string) (ProcessResponse, error) {
	requestID := uuid.NewString()
	c.log.Info("saras: createProcess",
		zap.String("request_id", requestID),
		zap.String("sub_project_id", subProjectID),
		zap.String("idempotency_key", idempotencyKey),
	)

	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	data, err := c.transport.Post(ctx, "/process/createProcess", map[string]any{
		"subProjectId": subProjectID,
		"fields":       fields,
	}, headers)
	if err != nil {
		return ProcessResponse{}, err
	}
	return ProcessResponseFromMap(data), nil
}

func (c *LiveClient) UploadFiles(ctx context.Context, files []FileAttachment) (FileUploadResponse, error) {
	requestID := uuid.NewString()
	c.log.Info("saras: uploadFiles",
		zap.String("request_id", requestID),
		zap.Int("file_count", len(files)),
	)

	data, err := c.transport.PostMultipart(ctx, "/process/knowledges/createStorage", map[string]string{
		"pluginName": c.cfg.PluginName,
	}, files)
	if err != nil {
		return FileUploadResponse{}, err
	}
	return FileUploadResponseFromMap(data), nil
}

func (c *LiveClient) ExecuteWorkflow(ctx context.Context, workflowID string, otherDetails, payload map[string]any) (WorkflowResponse, error) {
	if workflowID == "" {
		workflowID = c.cfg.WorkflowID
	}
	if otherDetails == nil {
		otherDetails = map[string]any{}
	}
	if payload == nil {
		payload = map[string]any{}
	}

	requestID := uuid.NewString()
	c.log.Info("saras: executeWorkflow",
		zap.String("request_id", requestID),
		zap.String("workflow_id", workflowID),
	)

	data, err := c.transport.Post(ctx, "/process/workflows/executeWorkflow", map[string]any{
		"workflowId":   workflowID,
		"otherDetails": otherDetails,
		"payload":      payload,
	}, nil)
	if err != nil {
		return WorkflowResponse{}, err
	}

	response := WorkflowResponseFromMap(data)
	if response.WorkflowID == "" {
		response.WorkflowID = workflowID
	}
	return response, nil
}
