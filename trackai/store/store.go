// Package store defines the persistence contracts for the TrackAI domain.
// The mysql subpackage is the production implementation; tests use in-memory
// fakes against the same interfaces.
package store

import (
	"context"
	"errors"
	"time"

	"trackai.dev/trackai/trackai/model"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateRequest indicates a client_request_id was already used.
	ErrDuplicateRequest = errors.New("duplicate client request id")
)

// SessionStore persists attendance sessions.
type SessionStore interface {
	Create(ctx context.Context, session *model.AttendanceSession) error
	Update(ctx context.Context, session *model.AttendanceSession) error
	// LatestOpen returns the open session with the most recent check-in for
	// the user/project pair, or nil when there is none.
	LatestOpen(ctx context.Context, userID uint, projectExternalID string) (*model.AttendanceSession, error)
	// LatestOpenCheckedInBefore returns the user's open session (any
	// project) whose check-in is before the given instant, newest first.
	LatestOpenCheckedInBefore(ctx context.Context, userID uint, before time.Time) (*model.AttendanceSession, error)
	// OpenCheckedInBefore returns every open session checked in before the
	// cutoff, across all users.
	OpenCheckedInBefore(ctx context.Context, cutoff time.Time) ([]model.AttendanceSession, error)
	// ListForUser returns the user's sessions with check-in inside [from, to).
	ListForUser(ctx context.Context, userID uint, from, to time.Time) ([]model.AttendanceSession, error)
}

// UploadStore persists upload records.
type UploadStore interface {
	Create(ctx context.Context, upload *model.Upload) error
	Save(ctx context.Context, upload *model.Upload) error
	Find(ctx context.Context, id uint) (*model.Upload, error)
	FindByClientRequestID(ctx context.Context, clientRequestID string) (*model.Upload, error)
	// HardDelete removes the row entirely; used for uploads that never
	// reached Saras.
	HardDelete(ctx context.Context, upload *model.Upload) error
	// SoftDelete sets the soft-delete marker, keeping the row for audit.
	SoftDelete(ctx context.Context, upload *model.Upload) error
	ListForProject(ctx context.Context, projectID uint) ([]model.Upload, error)
}

// ProjectStore persists the local mirror of Saras projects.
type ProjectStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*model.Project, error)
	Upsert(ctx context.Context, project *model.Project) error
	List(ctx context.Context) ([]model.Project, error)
}

// UserStore persists users and their per-user Saras credential.
type UserStore interface {
	Find(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
}

// AuditSink receives append-only audit records. Failures to audit must not
// fail the audited operation.
type AuditSink interface {
	Log(ctx context.Context, userID uint, action string, contractID string, details map[string]any)
}
