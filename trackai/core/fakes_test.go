package core

import (
	"bytes"
	"context"
	"io"
	"sort"
	"time"

	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
)

// In-memory stand-ins for the mysql stores, mirroring their contracts:
// LatestOpen and friends return (nil, nil) when nothing matches, Find maps
// missing rows to store.ErrNotFound and skips soft-deleted rows.

type memSessionStore struct {
	nextID   uint
	sessions map[uint]*model.AttendanceSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[uint]*model.AttendanceSession{}}
}

func (s *memSessionStore) Create(ctx context.Context, session *model.AttendanceSession) error {
	s.nextID++
	session.ID = s.nextID
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *memSessionStore) Update(ctx context.Context, session *model.AttendanceSession) error {
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *memSessionStore) LatestOpen(ctx context.Context, userID uint, projectExternalID string) (*model.AttendanceSession, error) {
	var latest *model.AttendanceSession
	for _, session := range s.sessions {
		if session.UserID != userID || session.ProjectExternalID != projectExternalID || !session.IsOpen() {
			continue
		}
		if latest == nil || session.CheckInAt.After(latest.CheckInAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, nil
	}
	found := *latest
	return &found, nil
}

func (s *memSessionStore) LatestOpenCheckedInBefore(ctx context.Context, userID uint, before time.Time) (*model.AttendanceSession, error) {
	var latest *model.AttendanceSession
	for _, session := range s.sessions {
		if session.UserID != userID || !session.IsOpen() || !session.CheckInAt.Before(before) {
			continue
		}
		if latest == nil || session.CheckInAt.After(latest.CheckInAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, nil
	}
	found := *latest
	return &found, nil
}

func (s *memSessionStore) OpenCheckedInBefore(ctx context.Context, cutoff time.Time) ([]model.AttendanceSession, error) {
	var open []model.AttendanceSession
	for _, session := range s.sessions {
		if session.IsOpen() && session.CheckInAt.Before(cutoff) {
			open = append(open, *session)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	return open, nil
}

func (s *memSessionStore) ListForUser(ctx context.Context, userID uint, from, to time.Time) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	for _, session := range s.sessions {
		if session.UserID != userID {
			continue
		}
		if session.CheckInAt.Before(from) || !session.CheckInAt.Before(to) {
			continue
		}
		sessions = append(sessions, *session)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CheckInAt.Before(sessions[j].CheckInAt) })
	return sessions, nil
}

func (s *memSessionStore) get(id uint) *model.AttendanceSession {
	return s.sessions[id]
}

type memUploadStore struct {
	nextID      uint
	uploads     map[uint]*model.Upload
	softDeleted map[uint]bool
}

func newMemUploadStore() *memUploadStore {
	return &memUploadStore{uploads: map[uint]*model.Upload{}, softDeleted: map[uint]bool{}}
}

func (s *memUploadStore) Create(ctx context.Context, upload *model.Upload) error {
	for _, existing := range s.uploads {
		if existing.ClientRequestID == upload.ClientRequestID {
			return store.ErrDuplicateRequest
		}
	}
	s.nextID++
	upload.ID = s.nextID
	stored := *upload
	s.uploads[upload.ID] = &stored
	return nil
}

func (s *memUploadStore) Save(ctx context.Context, upload *model.Upload) error {
	stored := *upload
	s.uploads[upload.ID] = &stored
	return nil
}

func (s *memUploadStore) Find(ctx context.Context, id uint) (*model.Upload, error) {
	upload, ok := s.uploads[id]
	if !ok || s.softDeleted[id] {
		return nil, store.ErrNotFound
	}
	found := *upload
	return &found, nil
}

func (s *memUploadStore) FindByClientRequestID(ctx context.Context, clientRequestID string) (*model.Upload, error) {
	for id, upload := range s.uploads {
		if upload.ClientRequestID == clientRequestID && !s.softDeleted[id] {
			found := *upload
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memUploadStore) HardDelete(ctx context.Context, upload *model.Upload) error {
	delete(s.uploads, upload.ID)
	delete(s.softDeleted, upload.ID)
	return nil
}

func (s *memUploadStore) SoftDelete(ctx context.Context, upload *model.Upload) error {
	s.softDeleted[upload.ID] = true
	return nil
}

func (s *memUploadStore) ListForProject(ctx context.Context, projectID uint) ([]model.Upload, error) {
	var uploads []model.Upload
	for id, upload := range s.uploads {
		if s.softDeleted[id] || upload.ProjectID == nil || *upload.ProjectID != projectID {
			continue
		}
		uploads = append(uploads, *upload)
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].ID < uploads[j].ID })
	return uploads, nil
}

func (s *memUploadStore) get(id uint) *model.Upload {
	return s.uploads[id]
}

type memProjectStore struct {
	nextID   uint
	projects map[string]*model.Project
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: map[string]*model.Project{}}
}

func (s *memProjectStore) FindByExternalID(ctx context.Context, externalID string) (*model.Project, error) {
	project, ok := s.projects[externalID]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := *project
	return &found, nil
}

func (s *memProjectStore) Upsert(ctx context.Context, project *model.Project) error {
	if existing, ok := s.projects[project.ExternalID]; ok {
		project.ID = existing.ID
	} else {
		s.nextID++
		project.ID = s.nextID
	}
	stored := *project
	s.projects[project.ExternalID] = &stored
	return nil
}

func (s *memProjectStore) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	for _, project := range s.projects {
		projects = append(projects, *project)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

type auditEntry struct {
	UserID     uint
	Action     string
	ContractID string
	Details    map[string]any
}

type memAuditSink struct {
	entries []auditEntry
}

func (s *memAuditSink) Log(ctx context.Context, userID uint, action string, contractID string, details map[string]any) {
	s.entries = append(s.entries, auditEntry{UserID: userID, Action: action, ContractID: contractID, Details: details})
}

func (s *memAuditSink) actions() []string {
	var actions []string
	for _, entry := range s.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

// fakeSarasClient is a scriptable saras.Client. Unset hooks behave as a
// generic success so tests only script the calls they assert on.
type fakeSarasClient struct {
	createProcess func(subProjectID string, fields map[string]any, idempotencyKey string) (saras.ProcessResponse, error)
	uploadFiles   func(files []saras.FileAttachment) (saras.FileUploadResponse, error)
	getProjects   func(page, perPage int) (saras.ProjectsResponse, error)

	processCalls int
	uploadCalls  int

	lastSubProjectID   string
	lastFields         map[string]any
	lastIdempotencyKey string
}

func (c *fakeSarasClient) IsStubMode() bool { return true }

func (c *fakeSarasClient) GetUserDetails(ctx context.Context) (saras.UserDetails, error) {
	return saras.UserDetails{UserID: "u-1", Name: "Test Engineer"}, nil
}

func (c *fakeSarasClient) GetProjectsForUser(ctx context.Context, page, perPage int) (saras.ProjectsResponse, error) {
	if c.getProjects != nil {
		return c.getProjects(page, perPage)
	}
	return saras.ProjectsResponse{Success: true, CurrentPage: page, TotalPages: 1}, nil
}

func (c *fakeSarasClient) CreateProcess(ctx context.Context, subProjectID string, fields map[string]any, idempotencyKey string) (saras.ProcessResponse, error) {
	c.processCalls++
	c.lastSubProjectID = subProjectID
	c.lastFields = fields
	c.lastIdempotencyKey = idempotencyKey
	if c.createProcess != nil {
		return c.createProcess(subProjectID, fields, idempotencyKey)
	}
	return saras.ProcessResponse{Success: true, EntryID: "entry-1", Message: "created"}, nil
}

func (c *fakeSarasClient) UploadFiles(ctx context.Context, files []saras.FileAttachment) (saras.FileUploadResponse, error) {
	c.uploadCalls++
	if c.uploadFiles != nil {
		return c.uploadFiles(files)
	}
	return saras.FileUploadResponse{Success: true, FileIDs: []string{"file-1"}}, nil
}

func (c *fakeSarasClient) ExecuteWorkflow(ctx context.Context, workflowID string, otherDetails, payload map[string]any) (saras.WorkflowResponse, error) {
	return saras.WorkflowResponse{Success: true, WorkflowID: workflowID, Status: "completed"}, nil
}

// memFileStore keeps staged files in a map, matching LocalStore semantics:
// Delete of a missing key is not an error.
type memFileStore struct {
	files map[string][]byte
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}}
}

func (s *memFileStore) Save(ctx context.Context, key string, content io.Reader) error {
	raw, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.files[key] = raw
	return nil
}

func (s *memFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	raw, ok := s.files[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (s *memFileStore) Delete(ctx context.Context, key string) error {
	delete(s.files, key)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testConfig() saras.Config {
	return saras.Config{
		Mode:              saras.ModeStub,
		DefaultContractID: "CW-DEFAULT",
		SubProjects: saras.SubProjectIDs{
			Attendance: "sub-attendance",
			TrackData:  "sub-trackdata",
			Progress:   "sub-progress",
		},
		Features: saras.FeatureFlags{Enabled: true, ProgressEnabled: true},
	}
}
