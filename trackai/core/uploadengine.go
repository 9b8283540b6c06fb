package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"trackai.dev/trackai/infrastructure/filesystem"
	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
)

var (
	// ErrNotEditable means the upload is locked, deleted, or belongs to a
	// closed project.
	ErrNotEditable = errors.New("upload is not editable")

	// ErrNotDeletable mirrors ErrNotEditable for delete.
	ErrNotDeletable = errors.New("upload is not deletable")

	// ErrNotRetryable means the upload is not in failed status, or is locked.
	ErrNotRetryable = errors.New("upload is not retryable")

	// ErrNotSyncable means the upload is already synced, deleted, or locked.
	ErrNotSyncable = errors.New("upload cannot be synced in its current status")
)

// UploadEngine drives an upload through pending, uploading, uploaded and
// failed. The locally staged file is the durable copy: it is written before
// the remote sync and kept on failure so a retry never needs the client to
// re-send the raw bytes.
type UploadEngine struct {
	client   saras.Client
	uploads  store.UploadStore
	projects store.ProjectStore
	files    filesystem.Store
	audit    store.AuditSink
	cfg      saras.Config
	log      *zap.Logger

	Now func() time.Time
}

func NewUploadEngine(client saras.Client, uploads store.UploadStore, projects store.ProjectStore, files filesystem.Store, audit store.AuditSink, cfg saras.Config, log *zap.Logger) *UploadEngine {
	return &UploadEngine{
		client:   client,
		uploads:  uploads,
		projects: projects,
		files:    files,
		audit:    audit,
		cfg:      cfg,
		log:      log,
		Now:      time.Now,
	}
}

// UploadParams are the caller-supplied fields for a new upload record.
type UploadParams struct {
	UserID            uint
	ProjectExternalID string
	ContractID        string
	Title             string
	Remarks           *string
	DocumentType      string
	Tags              []string
	ClientRequestID   string
}

// UploadMetadata are the editable descriptive fields.
type UploadMetadata struct {
	Title        *string
	Remarks      *string
	DocumentType *string
	Tags         []string
}

// FilePayload is the raw file attached to an upload.
type FilePayload struct {
	Name    string
	Mime    string
	Size    int64
	Content io.Reader
}

// SyncParams carry request-scoped context for the remote sync.
type SyncParams struct {
	IPAddress string
	Latitude  float64
	Longitude float64
}

// CreateUpload records a pending upload with no remote call. The
// client_request_id is checked here and enforced again by the store's unique
// index; either path reports ErrDuplicateRequest.
func (e *UploadEngine) CreateUpload(ctx context.Context, p UploadParams) (*model.Upload, error) {
	if existing, err := e.uploads.FindByClientRequestID(ctx, p.ClientRequestID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	} else if existing != nil {
		return nil, store.ErrDuplicateRequest
	}

	upload := &model.Upload{
		UserID:          p.UserID,
		ContractID:      p.ContractID,
		Title:           p.Title,
		Remarks:         p.Remarks,
		DocumentType:    p.DocumentType,
		Status:          model.UploadStatusPending,
		ClientRequestID: p.ClientRequestID,
	}

	if p.ProjectExternalID != "" {
		project, err := e.projects.FindByExternalID(ctx, p.ProjectExternalID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if project != nil {
			upload.ProjectID = &project.ID
			upload.Project = project
			if upload.ContractID == "" {
				upload.ContractID = project.ContractID
			}
		}
	}

	tags, err := marshalTags(p.Tags)
	if err != nil {
		return nil, err
	}
	upload.Tags = tags

	if err := e.uploads.Create(ctx, upload); err != nil {
		return nil, err
	}

	e.audit.Log(ctx, p.UserID, "upload_created", upload.ContractID, map[string]any{
		"upload_id":         upload.ID,
		"client_request_id": upload.ClientRequestID,
		"document_type":     upload.DocumentType,
	})
	return upload, nil
}

// UpdateMetadata mutates the descriptive fields of an editable upload.
func (e *UploadEngine) UpdateMetadata(ctx context.Context, id uint, meta UploadMetadata) (*model.Upload, error) {
	upload, err := e.uploads.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !upload.IsEditable() {
		return nil, ErrNotEditable
	}

	if meta.Title != nil {
		upload.Title = *meta.Title
	}
	if meta.Remarks != nil {
		upload.Remarks = meta.Remarks
	}
	if meta.DocumentType != nil {
		upload.DocumentType = *meta.DocumentType
	}
	if meta.Tags != nil {
		tags, err := marshalTags(meta.Tags)
		if err != nil {
			return nil, err
		}
		upload.Tags = tags
	}

	if err := e.uploads.Save(ctx, upload); err != nil {
		return nil, err
	}
	return upload, nil
}

// DeleteUpload removes the record. A pending upload has nothing remote to
// clean up, so its row is removed entirely together with any staged file.
// Anything that reached Saras is soft-deleted and kept for audit.
func (e *UploadEngine) DeleteUpload(ctx context.Context, id uint) error {
	upload, err := e.uploads.Find(ctx, id)
	if err != nil {
		return err
	}
	if !upload.IsDeletable() {
		return ErrNotDeletable
	}

	if upload.IsPending() {
		if err := e.files.Delete(ctx, StagingKey(upload.ID)); err != nil {
			e.log.Warn("upload: failed to remove staged file", zap.Uint("upload_id", upload.ID), zap.Error(err))
		}
		if err := e.uploads.HardDelete(ctx, upload); err != nil {
			return err
		}
	} else {
		upload.Status = model.UploadStatusDeleted
		if err := e.uploads.Save(ctx, upload); err != nil {
			return err
		}
		if err := e.uploads.SoftDelete(ctx, upload); err != nil {
			return err
		}
	}

	e.audit.Log(ctx, upload.UserID, "upload_deleted", upload.ContractID, map[string]any{
		"upload_id": upload.ID,
		"hard":      upload.IsPending(),
	})
	return nil
}

// RetryUpload resets a failed upload to pending and clears last_error. The
// staged file and mime/size survive the failure, so the next SyncFile can
// reuse them.
func (e *UploadEngine) RetryUpload(ctx context.Context, id uint) (*model.Upload, error) {
	upload, err := e.uploads.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !upload.IsRetryable() {
		return nil, ErrNotRetryable
	}

	upload.Status = model.UploadStatusPending
	upload.LastError = nil
	if err := e.uploads.Save(ctx, upload); err != nil {
		return nil, err
	}

	e.audit.Log(ctx, upload.UserID, "upload_retry", upload.ContractID, map[string]any{
		"upload_id": upload.ID,
	})
	return upload, nil
}

// Lock sets the permanent lock. There is no unlock.
func (e *UploadEngine) Lock(ctx context.Context, id uint, reason string) (*model.Upload, error) {
	upload, err := e.uploads.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if upload.IsLocked() {
		return upload, nil
	}

	now := e.Now()
	upload.LockedAt = &now
	upload.LockedReason = &reason
	if err := e.uploads.Save(ctx, upload); err != nil {
		return nil, err
	}
	return upload, nil
}

// SyncFile attaches the raw file and runs the two-step remote sync: stage
// locally, upload the bytes to Saras storage, then create the knowledge
// process referencing the returned file id. Any remote failure lands in
// failed with last_error set; the staged file stays put.
func (e *UploadEngine) SyncFile(ctx context.Context, id uint, file FilePayload, p SyncParams) (*model.Upload, error) {
	upload, err := e.uploads.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if upload.IsLocked() || upload.Status == model.UploadStatusDeleted || upload.IsUploaded() {
		return nil, ErrNotSyncable
	}

	upload.Mime = &file.Mime
	upload.Size = &file.Size
	if err := e.files.Save(ctx, StagingKey(upload.ID), file.Content); err != nil {
		return nil, fmt.Errorf("stage upload %d: %w", upload.ID, err)
	}

	upload.Status = model.UploadStatusUploading
	if err := e.uploads.Save(ctx, upload); err != nil {
		return nil, err
	}

	if err := e.syncToRemote(ctx, upload, file.Name, p); err != nil {
		apiErr, ok := saras.AsAPIError(err)
		if !ok {
			return nil, err
		}

		message := apiErr.Message
		upload.Status = model.UploadStatusFailed
		upload.LastError = &message
		if saveErr := e.uploads.Save(ctx, upload); saveErr != nil {
			return nil, saveErr
		}

		e.log.Warn("upload: remote sync failed",
			zap.Uint("upload_id", upload.ID),
			zap.String("kind", string(apiErr.Kind)),
			zap.Error(err),
		)
		return upload, nil
	}

	upload.Status = model.UploadStatusUploaded
	upload.LastError = nil
	if err := e.uploads.Save(ctx, upload); err != nil {
		return nil, err
	}

	e.audit.Log(ctx, upload.UserID, "upload_synced", upload.ContractID, map[string]any{
		"upload_id":      upload.ID,
		"entry_id":       upload.EntryID,
		"remote_file_id": upload.RemoteFileID,
	})
	return upload, nil
}

// syncToRemote performs the two remote steps. It mutates entry_id and
// remote_file_id on success and returns an APIError on any remote failure.
func (e *UploadEngine) syncToRemote(ctx context.Context, upload *model.Upload, filename string, p SyncParams) error {
	staged, err := e.files.Open(ctx, StagingKey(upload.ID))
	if err != nil {
		return fmt.Errorf("open staged upload %d: %w", upload.ID, err)
	}
	defer staged.Close()

	fileResponse, err := e.client.UploadFiles(ctx, []saras.FileAttachment{
		{Name: filename, Content: staged},
	})
	if err != nil {
		return err
	}

	fileID := fileResponse.FirstFileID()
	if fileID == "" {
		// The storage call nominally succeeded but returned nothing usable.
		return saras.ErrUploadFailed("Saras storage returned no file id")
	}
	upload.RemoteFileID = &fileID

	now := e.Now()
	response, err := e.client.CreateProcess(ctx, e.cfg.SubProjects.TrackData, map[string]any{
		"file":         fileID,
		"contractId":   e.resolveContractID(upload),
		"name":         upload.Title,
		"documentType": upload.DocumentType,
		"tags":         upload.Tags,
		"remarks":      upload.Remarks,
		"ipAddress":    p.IPAddress,
		"geoLocation":  fmt.Sprintf("%v,%v", p.Latitude, p.Longitude),
		"date":         now.Format("2006-01-02"),
		"time":         now.Format("15:04:05"),
	}, upload.ClientRequestID)
	if err != nil {
		return err
	}
	if !response.Success {
		return saras.ErrUploadFailed(response.Message)
	}

	upload.EntryID = &response.EntryID
	return nil
}

func (e *UploadEngine) resolveContractID(upload *model.Upload) string {
	if upload.ContractID != "" {
		return upload.ContractID
	}
	return e.cfg.DefaultContractID
}

// StagingKey is the filesystem key for an upload's staged bytes.
func StagingKey(uploadID uint) string {
	return fmt.Sprintf("uploads/%d", uploadID)
}

func marshalTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		return nil, nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return datatypes.JSON(raw), nil
}
