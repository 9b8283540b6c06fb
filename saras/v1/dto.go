package v1

import (
	"strconv"
)

// The Saras live API and the stub return differently shaped JSON for the
// same operations (nested objects vs flat fields, camelCase vs snake_case).
// All of that is normalized here; nothing outside this package ever sees the
// raw upstream payloads.

type ProcessResponse struct {
	Success   bool   `json:"success"`
	EntryID   string `json:"entry_id"`
	ProcessID string `json:"process_id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// ProcessResponseFromMap accepts both the live nested shape
// {"traceId": ..., "process": {"id": ..., "createdTs": ...}} and the flat
// stub shape {"success": ..., "entryId"/"entry_id"/"id": ...}.
func ProcessResponseFromMap(data map[string]any) ProcessResponse {
	if process, ok := data["process"].(map[string]any); ok {
		if id := stringField(process, "id"); id != "" {
			message := stringField(data, "message")
			if message == "" {
				message = "Process created successfully"
			}
			return ProcessResponse{
				Success:   true,
				EntryID:   id,
				ProcessID: id,
				Message:   message,
				CreatedAt: stringField(process, "createdTs"),
			}
		}
	}

	entryID := stringField(data, "entryId", "entry_id", "id")
	success, hasSuccess := data["success"].(bool)
	if !hasSuccess {
		success = entryID != ""
	}
	return ProcessResponse{
		Success:   success,
		EntryID:   entryID,
		ProcessID: stringField(data, "processId", "process_id", "id"),
		Message:   stringField(data, "message"),
		CreatedAt: stringField(data, "createdAt", "created_at"),
	}
}

// FailedProcessResponse builds the structured failure the service layer
// returns instead of propagating a Saras exception.
func FailedProcessResponse(message string) ProcessResponse {
	return ProcessResponse{Success: false, Message: message}
}

type Project struct {
	ExternalID  string `json:"external_id"`
	ContractID  string `json:"contract_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	TenantID    string `json:"tenant_id,omitempty"`
	TenantName  string `json:"tenant_name,omitempty"`
}

// ProjectFromMap normalizes the live shape
// {"id": ..., "projectMeta": {...}, "tenantId": {...}} and the flat stub
// shape {"external_id": ..., "contract_id": ...}.
func ProjectFromMap(data map[string]any) Project {
	if meta, ok := data["projectMeta"].(map[string]any); ok {
		tenant, _ := data["tenantId"].(map[string]any)

		contractID := stringField(meta, "projectId")
		if contractID == "" {
			contractID = stringField(data, "id")
		}
		name := stringField(meta, "name")
		if name == "" {
			name = "Unknown Project"
		}
		status := stringField(meta, "status")
		if status == "" {
			status = "active"
		}
		return Project{
			ExternalID:  stringField(data, "id"),
			ContractID:  contractID,
			Name:        name,
			Description: stringField(meta, "description"),
			Status:      status,
			Location:    stringField(meta, "location"),
			StartDate:   stringField(data, "createdTs"),
			TenantID:    stringField(tenant, "id"),
			TenantName:  stringField(tenant, "name"),
		}
	}

	name := stringField(data, "name")
	if name == "" {
		name = "Unknown Project"
	}
	status := stringField(data, "status")
	if status == "" {
		status = "active"
	}
	return Project{
		ExternalID:  stringField(data, "external_id", "id"),
		ContractID:  stringField(data, "contract_id", "id"),
		Name:        name,
		Description: stringField(data, "description"),
		Status:      status,
		Location:    stringField(data, "location"),
		StartDate:   stringField(data, "start_date", "createdTs"),
		EndDate:     stringField(data, "end_date"),
	}
}

type ProjectsResponse struct {
	Success     bool      `json:"success"`
	Projects    []Project `json:"projects"`
	CurrentPage int       `json:"current_page"`
	TotalPages  int       `json:"total_pages"`
	TotalCount  int       `json:"total_count"`
	Message     string    `json:"message,omitempty"`
}

// ProjectsResponseFromMap handles the live paginated shape
// {"meta": {"page": "1", "totalPages": "1", "totalCount": "5"}, "projects": [...]}
// (the meta counters arrive as strings) and the stub shape with top-level
// page/totalPages/totalCount.
func ProjectsResponseFromMap(data map[string]any) ProjectsResponse {
	rawProjects, ok := data["data"].([]any)
	if !ok {
		rawProjects, _ = data["projects"].([]any)
	}
	meta, _ := data["meta"].(map[string]any)

	projects := make([]Project, 0, len(rawProjects))
	for _, item := range rawProjects {
		if m, ok := item.(map[string]any); ok {
			projects = append(projects, ProjectFromMap(m))
		}
	}

	currentPage := intField(meta, "page")
	if currentPage == 0 {
		currentPage = intField(data, "page", "currentPage", "current_page")
	}
	if currentPage == 0 {
		currentPage = 1
	}
	totalPages := intField(meta, "totalPages")
	if totalPages == 0 {
		totalPages = intField(data, "totalPages", "total_pages")
	}
	if totalPages == 0 {
		totalPages = 1
	}
	totalCount := intField(meta, "totalCount")
	if totalCount == 0 {
		totalCount = intField(data, "totalCount", "total_count", "total")
	}
	if totalCount == 0 {
		totalCount = len(projects)
	}

	success, hasSuccess := data["success"].(bool)
	if !hasSuccess {
		success = true
	}
	return ProjectsResponse{
		Success:     success,
		Projects:    projects,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		Message:     stringField(data, "message"),
	}
}

type UserDetails struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Region     string `json:"region"`
	TenantID   string `json:"tenant_id,omitempty"`
	TenantName string `json:"tenant_name,omitempty"`
}

// UserDetailsFromMap handles the live shape (id + tenantId object) and the
// stub shape (user_id + flat fields).
func UserDetailsFromMap(data map[string]any) UserDetails {
	tenant, _ := data["tenantId"].(map[string]any)

	username := stringField(data, "username")
	if username == "" {
		username = stringField(data, "email")
	}
	name := stringField(data, "name")
	if name == "" {
		name = "Unknown"
	}
	role := stringField(data, "role")
	if role == "" {
		role = "engineer"
	}
	region := stringField(data, "region")
	if region == "" {
		region = stringField(tenant, "name")
	}
	return UserDetails{
		UserID:     stringField(data, "id", "user_id"),
		Username:   username,
		Name:       name,
		Email:      stringField(data, "email"),
		Role:       role,
		Department: stringField(data, "department"),
		Region:     region,
		TenantID:   stringField(tenant, "id"),
		TenantName: stringField(tenant, "name"),
	}
}

type FileUploadResponse struct {
	Success bool     `json:"success"`
	FileIDs []string `json:"file_ids"`
	Message string   `json:"message"`
}

// FileUploadResponseFromMap tolerates a single file object, a 'files' array
// and a 'data' array, with the id under id/fileId/file_id.
func FileUploadResponseFromMap(data map[string]any) FileUploadResponse {
	rawFiles, ok := data["files"].([]any)
	if !ok {
		rawFiles, ok = data["data"].([]any)
	}
	if !ok && stringField(data, "id") != "" {
		rawFiles = []any{data}
	}

	var fileIDs []string
	for _, item := range rawFiles {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id := stringField(m, "id", "fileId", "file_id"); id != "" {
			fileIDs = append(fileIDs, id)
		}
	}

	success, hasSuccess := data["success"].(bool)
	if !hasSuccess {
		success = len(fileIDs) > 0
	}
	return FileUploadResponse{
		Success: success,
		FileIDs: fileIDs,
		Message: stringField(data, "message"),
	}
}

// FirstFileID returns the first remote file id, or "" when none came back.
func (r FileUploadResponse) FirstFileID() string {
	if len(r.FileIDs) == 0 {
		return ""
	}
	return r.FileIDs[0]
}

type WorkflowResponse struct {
	Success     bool           `json:"success"`
	WorkflowID  string         `json:"workflow_id"`
	ExecutionID string         `json:"execution_id,omitempty"`
	Status      string         `json:"status"`
	Result      map[string]any `json:"result,omitempty"`
	Message     string         `json:"message,omitempty"`
}

func WorkflowResponseFromMap(data map[string]any) WorkflowResponse {
	success, hasSuccess := data["success"].(bool)
	if !hasSuccess {
		success = true
	}
	status := stringField(data, "status")
	if status == "" {
		status = "completed"
	}
	result, ok := data["result"].(map[string]any)
	if !ok {
		result, _ = data["data"].(map[string]any)
	}
	return WorkflowResponse{
		Success:     success,
		WorkflowID:  stringField(data, "workflowId", "workflow_id"),
		ExecutionID: stringField(data, "executionId", "execution_id", "id"),
		Status:      status,
		Result:      result,
		Message:     stringField(data, "message"),
	}
}

// stringField returns the first present key as a string, converting numeric
// values since the live API is not consistent about quoting ids.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

// intField parses the first present key as an int; the live API sends
// pagination counters as strings.
func intField(m map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return int(v)
		case int:
			return v
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}
