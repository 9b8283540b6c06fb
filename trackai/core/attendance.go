package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
)

const (
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
)

// AttendanceService orchestrates check-in/check-out: remote entry creation
// against Saras first, local session mutation only after remote success.
// Saras failures are converted into non-success results here; they never
// propagate as errors to the HTTP layer.
type AttendanceService struct {
	client   saras.Client
	sessions *SessionEngine
	audit    store.AuditSink
	cfg      saras.Config
	log      *zap.Logger

	Now func() time.Time
}

func NewAttendanceService(client saras.Client, sessions *SessionEngine, audit store.AuditSink, cfg saras.Config, log *zap.Logger) *AttendanceService {
	return &AttendanceService{
		client:   client,
		sessions: sessions,
		audit:    audit,
		cfg:      cfg,
		log:      log,
		Now:      time.Now,
	}
}

// AttendanceResult is the structured outcome of a check-in or check-out.
// Response.Success=false with a nil error means a business failure the
// caller reports with HTTP 200.
type AttendanceResult struct {
	Response saras.ProcessResponse
	Session  *model.AttendanceSession
	Status   string
}

// AttendanceParams are the caller-supplied check-in/check-out fields.
type AttendanceParams struct {
	UserID          uint
	ContractID      string
	Latitude        float64
	Longitude       float64
	Remarks         *string
	IPAddress       string
	ClientRequestID string
}

func (s *AttendanceService) CheckIn(ctx context.Context, p AttendanceParams) (AttendanceResult, error) {
	// Heal any orphaned sessions from previous days before deciding.
	if _, err := s.sessions.AutoClosePreviousDaySessions(ctx, p.UserID); err != nil {
		return AttendanceResult{}, fmt.Errorf("auto-close previous day: %w", err)
	}

	canCheckIn, err := s.sessions.CanCheckIn(ctx, p.UserID, p.ContractID)
	if err != nil {
		return AttendanceResult{}, err
	}
	if !canCheckIn {
		open, err := s.sessions.GetOpenSession(ctx, p.UserID, p.ContractID)
		if err != nil {
			return AttendanceResult{}, err
		}
		// Idempotent "already in" response, not an error.
		return AttendanceResult{
			Response: saras.FailedProcessResponse("Already checked in to this project. Please check out first."),
			Session:  open,
			Status:   StatusCheckedIn,
		}, nil
	}

	idempotencyKey := p.ClientRequestID
	if idempotencyKey == "" {
		idempotencyKey = attendanceFallbackKey("check_in", p.UserID, p.ContractID, s.Now())
	}

	now := s.Now()
	response, err := s.client.CreateProcess(ctx, s.cfg.SubProjects.Attendance, map[string]any{
		"userId":             p.UserID,
		"contractId":         s.resolveContractID(p.ContractID),
		"ipAddressCheckIn":   p.IPAddress,
		"geoLocationCheckIn": fmt.Sprintf("%v,%v", p.Latitude, p.Longitude),
		"date":               now.Format("2006-01-02"),
		"checkInTime":        now.Format("15:04:05"),
		"remarks":            p.Remarks,
	}, idempotencyKey)
	if err != nil {
		if apiErr, ok := saras.AsAPIError(err); ok {
			return AttendanceResult{
				Response: saras.FailedProcessResponse(apiErr.Message),
				Status:   StatusCheckedOut,
			}, nil
		}
		return AttendanceResult{}, err
	}

	var session *model.AttendanceSession
	if response.Success {
		session, err = s.sessions.OpenSession(ctx, p.UserID, p.ContractID, p.Latitude, p.Longitude, p.Remarks)
		if err != nil {
			return AttendanceResult{}, err
		}

		s.audit.Log(ctx, p.UserID, "attendance_check_in", p.ContractID, map[string]any{
			"entry_id":        response.EntryID,
			"idempotency_key": idempotencyKey,
			"session_id":      session.ID,
			"latitude":        p.Latitude,
			"longitude":       p.Longitude,
		})
	}

	status := StatusCheckedOut
	if session != nil {
		status = StatusCheckedIn
	}
	return AttendanceResult{Response: response, Session: session, Status: status}, nil
}

func (s *AttendanceService) CheckOut(ctx context.Context, p AttendanceParams) (AttendanceResult, error) {
	session, err := s.sessions.GetOpenSession(ctx, p.UserID, p.ContractID)
	if err != nil {
		return AttendanceResult{}, err
	}
	if session == nil {
		// Nothing open; the remote client is not called.
		return AttendanceResult{
			Response: saras.FailedProcessResponse("Not checked in to this project. Please check in first."),
			Status:   StatusCheckedOut,
		}, nil
	}

	idempotencyKey := p.ClientRequestID
	if idempotencyKey == "" {
		idempotencyKey = attendanceFallbackKey("check_out", p.UserID, p.ContractID, s.Now())
	}

	now := s.Now()
	response, err := s.client.CreateProcess(ctx, s.cfg.SubProjects.Attendance, map[string]any{
		"userId":              p.UserID,
		"contractId":          s.resolveContractID(p.ContractID),
		"ipAddressCheckOut":   p.IPAddress,
		"geoLocationCheckOut": fmt.Sprintf("%v,%v", p.Latitude, p.Longitude),
		"date":                now.Format("2006-01-02"),
		"checkOutTime":        now.Format("15:04:05"),
		"remarks":             p.Remarks,
	}, idempotencyKey)
	if err != nil {
		if apiErr, ok := saras.AsAPIError(err); ok {
			// Session state is left unchanged on remote failure.
			return AttendanceResult{
				Response: saras.FailedProcessResponse(apiErr.Message),
				Session:  session,
				Status:   StatusCheckedIn,
			}, nil
		}
		return AttendanceResult{}, err
	}

	if response.Success {
		session, err = s.sessions.CloseSession(ctx, session, p.Latitude, p.Longitude, p.Remarks)
		if err != nil {
			return AttendanceResult{}, err
		}

		s.audit.Log(ctx, p.UserID, "attendance_check_out", p.ContractID, map[string]any{
			"entry_id":         response.EntryID,
			"idempotency_key":  idempotencyKey,
			"session_id":       session.ID,
			"duration_minutes": session.DurationMinutes(),
			"latitude":         p.Latitude,
			"longitude":        p.Longitude,
		})

		s.log.Info("attendance: checked out",
			zap.Uint("user_id", p.UserID),
			zap.String("contract_id", p.ContractID),
			zap.Intp("duration_minutes", session.DurationMinutes()),
		)
	}

	return AttendanceResult{Response: response, Session: session, Status: StatusCheckedOut}, nil
}

// resolveContractID falls back to the configured default while projects are
// not yet assigned contract ids by Saras.
func (s *AttendanceService) resolveContractID(contractID string) string {
	if contractID != "" {
		return contractID
	}
	return s.cfg.DefaultContractID
}
