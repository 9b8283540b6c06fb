package v1

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// StubClient returns deterministic canned data with no network access and no
// token dependency. It keeps the UI functional in development and when the
// live integration is switched off; response shapes match the live client so
// callers stay agnostic.
type StubClient struct {
	cfg Config
}

func NewStubClient(cfg Config) *StubClient {
	return &StubClient{cfg: cfg}
}

func (c *StubClient) IsStubMode() bool {
	return true
}

func (c *StubClient) GetUserDetails(ctx context.Context) (UserDetails, error) {
	return UserDetails{
		UserID:     "stub_user_" + shortID(),
		Username:   "engineer_stub",
		Name:       "Juan Dela Cruz",
		Email:      "engineer@dpwh.gov.ph",
		Role:       "engineer",
		Department: "DPWH Region III",
		Region:     "Central Luzon",
	}, nil
}

var stubProjects = []Project{
	{
		ExternalID:  "PROJ-2024-001",
		ContractID:  "CONTRACT-R3-2024-0156",
		Name:        "Rehabilitation of National Road Section - Bulacan",
		Description: "Rehabilitation and improvement of 5.2km national road section.",
		Status:      "active",
		Location:    "Bulacan, Region III",
		StartDate:   "2024-01-15",
		EndDate:     "2024-12-31",
	},
	{
		ExternalID:  "PROJ-2024-002",
		ContractID:  "CONTRACT-R3-2024-0189",
		Name:        "Bridge Construction - Pampanga River",
		Description: "Construction of new 120-meter bridge crossing Pampanga River.",
		Status:      "active",
		Location:    "Pampanga, Region III",
		StartDate:   "2024-03-01",
		EndDate:     "2025-06-30",
	},
	{
		ExternalID:  "PROJ-2024-003",
		ContractID:  "CONTRACT-R3-2024-0201",
		Name:        "Flood Control Project - Nueva Ecija",
		Description: "Implementation of flood mitigation infrastructure.",
		Status:      "active",
		Location:    "Nueva Ecija, Region III",
		StartDate:   "2024-02-01",
		EndDate:     "2024-11-30",
	},
}

func (c *StubClient) GetProjectsForUser(ctx context.Context, page, perPage int) (ProjectsResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	total := len(stubProjects)
	offset := (page - 1) * perPage
	var pageProjects []Project
	if offset < total {
		end := offset + perPage
		if end > total {
			end = total
		}
		pageProjects = stubProjects[offset:end]
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	return ProjectsResponse{
		Success:     true,
		Projects:    pageProjects,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
	}, nil
}

func (c *StubClient) CreateProcess(ctx context.Context, subProjectID string, fields map[string]any, idempotencyKey string) (ProcessResponse, error) {
	entryID := "entry_" + shortID()
	return ProcessResponse{
		Success:   true,
		EntryID:   entryID,
		ProcessID: "process_" + shortID(),
		Message:   "Process created successfully (stub)",
		CreatedAt: time.Now().Format(time.RFC3339),
	}, nil
}

func (c *StubClient) UploadFiles(ctx context.Context, files []FileAttachment) (FileUploadResponse, error) {
	fileIDs := make([]string, 0, len(files))
	for _, file := range files {
		// Drain the reader so stub behavior matches a real upload.
		_, _ = io.Copy(io.Discard, file.Content)
		fileIDs = append(fileIDs, uuid.NewString())
	}

	return FileUploadResponse{
		Success: true,
		FileIDs: fileIDs,
		Message: "Files uploaded successfully (stub)",
	}, nil
}

func (c *StubClient) ExecuteWorkflow(ctx context.Context, workflowID string, otherDetails, payload map[string]any) (WorkflowResponse, error) {
	if workflowID == "" {
		workflowID = c.cfg.WorkflowID
	}
	return WorkflowResponse{
		Success:     true,
		WorkflowID:  workflowID,
		ExecutionID: "exec_" + shortID(),
		Status:      "completed",
		Result: map[string]any{
			"analysis":   "AI analysis completed successfully (stub)",
			"confidence": 0.95,
			"tags":       []string{"construction", "progress", "site"},
		},
		Message: "Workflow executed successfully (stub)",
	}, nil
}

// shortID yields a 12-char random suffix for stub identifiers.
func shortID() string {
	id := uuid.NewString()
	return id[:8] + id[9:13]
}
