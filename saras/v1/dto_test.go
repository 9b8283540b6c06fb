package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessResponseFromMap(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]any
		expected ProcessResponse
	}{
		{
			name: "live nested shape",
			data: map[string]any{
				"traceId": "trace-1",
				"process": map[string]any{"id": "proc-9", "createdTs": "2026-03-05T08:00:00Z"},
			},
			expected: ProcessResponse{
				Success:   true,
				EntryID:   "proc-9",
				ProcessID: "proc-9",
				Message:   "Process created successfully",
				CreatedAt: "2026-03-05T08:00:00Z",
			},
		},
		{
			name: "flat shape with explicit success",
			data: map[string]any{"success": true, "entryId": "e-1", "message": "ok"},
			expected: ProcessResponse{
				Success:   true,
				EntryID:   "e-1",
				ProcessID: "e-1",
				Message:   "ok",
			},
		},
		{
			name: "success inferred from entry id",
			data: map[string]any{"entry_id": "e-2"},
			expected: ProcessResponse{
				Success:   true,
				EntryID:   "e-2",
				ProcessID: "e-2",
			},
		},
		{
			name:     "failure without entry id",
			data:     map[string]any{"message": "Contract is closed"},
			expected: ProcessResponse{Success: false, Message: "Contract is closed"},
		},
		{
			name: "numeric id",
			data: map[string]any{"id": float64(42)},
			expected: ProcessResponse{
				Success:   true,
				EntryID:   "42",
				ProcessID: "42",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProcessResponseFromMap(tt.data))
		})
	}
}

func TestProjectFromMap(t *testing.T) {
	t.Run("live shape", func(t *testing.T) {
		project := ProjectFromMap(map[string]any{
			"id":        "proj-1",
			"createdTs": "2026-01-10T00:00:00Z",
			"projectMeta": map[string]any{
				"projectId":   "C-001",
				"name":        "Bridge retrofit",
				"status":      "active",
				"description": "Retrofit of a 120m bridge",
				"location":    "Pampanga",
			},
			"tenantId": map[string]any{"id": "t-1", "name": "Region III"},
		})

		assert.Equal(t, "proj-1", project.ExternalID)
		assert.Equal(t, "C-001", project.ContractID)
		assert.Equal(t, "Bridge retrofit", project.Name)
		assert.Equal(t, "Pampanga", project.Location)
		assert.Equal(t, "2026-01-10T00:00:00Z", project.StartDate)
		assert.Equal(t, "t-1", project.TenantID)
		assert.Equal(t, "Region III", project.TenantName)
	})

	t.Run("live shape defaults", func(t *testing.T) {
		project := ProjectFromMap(map[string]any{
			"id":          "proj-2",
			"projectMeta": map[string]any{},
		})

		assert.Equal(t, "proj-2", project.ExternalID)
		assert.Equal(t, "proj-2", project.ContractID, "contract id falls back to the project id")
		assert.Equal(t, "Unknown Project", project.Name)
		assert.Equal(t, "active", project.Status)
	})

	t.Run("flat shape", func(t *testing.T) {
		project := ProjectFromMap(map[string]any{
			"external_id": "proj-3",
			"contract_id": "C-003",
			"name":        "Flood control",
			"status":      "closed",
			"start_date":  "2024-02-01",
			"end_date":    "2024-11-30",
		})

		assert.Equal(t, "proj-3", project.ExternalID)
		assert.Equal(t, "C-003", project.ContractID)
		assert.Equal(t, "closed", project.Status)
		assert.Equal(t, "2024-11-30", project.EndDate)
	})
}

func TestProjectsResponseFromMap(t *testing.T) {
	t.Run("live meta with string counters", func(t *testing.T) {
		response := ProjectsResponseFromMap(map[string]any{
			"meta": map[string]any{"page": "2", "totalPages": "3", "totalCount": "120"},
			"projects": []any{
				map[string]any{"external_id": "proj-1", "name": "Bridge retrofit"},
			},
		})

		assert.True(t, response.Success)
		assert.Equal(t, 2, response.CurrentPage)
		assert.Equal(t, 3, response.TotalPages)
		assert.Equal(t, 120, response.TotalCount)
		assert.Len(t, response.Projects, 1)
	})

	t.Run("data array with top-level counters", func(t *testing.T) {
		response := ProjectsResponseFromMap(map[string]any{
			"data": []any{
				map[string]any{"external_id": "proj-1", "name": "Bridge retrofit"},
				map[string]any{"external_id": "proj-2", "name": "Flood control"},
			},
			"page":       float64(1),
			"totalPages": float64(1),
		})

		assert.Equal(t, 1, response.CurrentPage)
		assert.Equal(t, 2, response.TotalCount, "count falls back to the page length")
		assert.Len(t, response.Projects, 2)
	})

	t.Run("empty payload", func(t *testing.T) {
		response := ProjectsResponseFromMap(map[string]any{})
		assert.True(t, response.Success)
		assert.Equal(t, 1, response.CurrentPage)
		assert.Equal(t, 1, response.TotalPages)
		assert.Empty(t, response.Projects)
	})
}

func TestUserDetailsFromMap(t *testing.T) {
	t.Run("live shape with tenant", func(t *testing.T) {
		details := UserDetailsFromMap(map[string]any{
			"id":       "u-1",
			"email":    "engineer@dpwh.gov.ph",
			"name":     "Juan Dela Cruz",
			"tenantId": map[string]any{"id": "t-1", "name": "Region III"},
		})

		assert.Equal(t, "u-1", details.UserID)
		assert.Equal(t, "engineer@dpwh.gov.ph", details.Username, "username falls back to the email")
		assert.Equal(t, "engineer", details.Role)
		assert.Equal(t, "Region III", details.Region, "region falls back to the tenant name")
		assert.Equal(t, "t-1", details.TenantID)
	})

	t.Run("flat stub shape", func(t *testing.T) {
		details := UserDetailsFromMap(map[string]any{
			"user_id":  "stub-1",
			"username": "engineer_stub",
			"name":     "Juan Dela Cruz",
			"role":     "inspector",
			"region":   "Central Luzon",
		})

		assert.Equal(t, "stub-1", details.UserID)
		assert.Equal(t, "engineer_stub", details.Username)
		assert.Equal(t, "inspector", details.Role)
		assert.Equal(t, "Central Luzon", details.Region)
	})
}

func TestFileUploadResponseFromMap(t *testing.T) {
	tests := []struct {
		name        string
		data        map[string]any
		wantIDs     []string
		wantSuccess bool
	}{
		{
			name:        "files array",
			data:        map[string]any{"files": []any{map[string]any{"id": "f-1"}, map[string]any{"fileId": "f-2"}}},
			wantIDs:     []string{"f-1", "f-2"},
			wantSuccess: true,
		},
		{
			name:        "data array",
			data:        map[string]any{"data": []any{map[string]any{"file_id": "f-3"}}},
			wantIDs:     []string{"f-3"},
			wantSuccess: true,
		},
		{
			name:        "single file object",
			data:        map[string]any{"id": "f-4"},
			wantIDs:     []string{"f-4"},
			wantSuccess: true,
		},
		{
			name:        "no files",
			data:        map[string]any{"message": "Storage quota exceeded"},
			wantIDs:     nil,
			wantSuccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := FileUploadResponseFromMap(tt.data)
			assert.Equal(t, tt.wantSuccess, response.Success)
			assert.Equal(t, tt.wantIDs, response.FileIDs)
		})
	}
}

func TestFirstFileID(t *testing.T) {
	assert.Equal(t, "", FileUploadResponse{}.FirstFileID())
	assert.Equal(t, "f-1", FileUploadResponse{FileIDs: []string{"f-1", "f-2"}}.FirstFileID())
}

func TestWorkflowResponseFromMap(t *testing.T) {
	response := WorkflowResponseFromMap(map[string]any{
		"workflowId":  "wf-1",
		"executionId": "exec-1",
		"result":      map[string]any{"confidence": 0.95},
	})

	assert.True(t, response.Success)
	assert.Equal(t, "wf-1", response.WorkflowID)
	assert.Equal(t, "exec-1", response.ExecutionID)
	assert.Equal(t, "completed", response.Status, "status defaults to completed")
	assert.Equal(t, 0.95, response.Result["confidence"])
}
