package core

import (
	"context"
	"fmt"
	"time"

	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/trackai/store"
)

// SessionEngine owns the attendance session state machine:
// open -> closed (normal checkout) or open -> auto_closed (sweep or lazy
// healing). Closed sessions are terminal; a new check-in creates a new row.
type SessionEngine struct {
	sessions store.SessionStore

	// Now is swappable in tests.
	Now func() time.Time
}

func NewSessionEngine(sessions store.SessionStore) *SessionEngine {
	return &SessionEngine{sessions: sessions, Now: time.Now}
}

// GetOpenSession returns the current open session for a user/project pair.
// If storage ever held more than one (a bug state), the most recently
// checked-in one is authoritative.
func (e *SessionEngine) GetOpenSession(ctx context.Context, userID uint, projectExternalID string) (*model.AttendanceSession, error) {
	return e.sessions.LatestOpen(ctx, userID, projectExternalID)
}

// CanCheckIn reports whether no open session exists for the pair.
func (e *SessionEngine) CanCheckIn(ctx context.Context, userID uint, projectExternalID string) (bool, error) {
	session, err := e.GetOpenSession(ctx, userID, projectExternalID)
	if err != nil {
		return false, err
	}
	return session == nil, nil
}

// OpenSession creates a new open session with the check-in fields.
func (e *SessionEngine) OpenSession(ctx context.Context, userID uint, projectExternalID string, latitude, longitude float64, remarks *string) (*model.AttendanceSession, error) {
	session := &model.AttendanceSession{
		UserID:            userID,
		ProjectExternalID: projectExternalID,
		CheckInAt:         e.Now(),
		CheckInLatitude:   latitude,
		CheckInLongitude:  longitude,
		CheckInRemarks:    remarks,
		Status:            model.SessionStatusOpen,
	}
	if err := e.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// CloseSession records the checkout fields and moves the session to closed.
func (e *SessionEngine) CloseSession(ctx context.Context, session *model.AttendanceSession, latitude, longitude float64, remarks *string) (*model.AttendanceSession, error) {
	now := e.Now()
	session.CheckOutAt = &now
	session.CheckOutLatitude = &latitude
	session.CheckOutLongitude = &longitude
	session.CheckOutRemarks = remarks
	session.Status = model.SessionStatusClosed
	if err := e.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}
	return session, nil
}

// AutoCloseSession closes a session without checkout geolocation (there is
// none to record) and notes the reason. Already-closed sessions are left
// untouched so a session is never auto-closed twice.
func (e *SessionEngine) AutoCloseSession(ctx context.Context, session *model.AttendanceSession, reason string) (*model.AttendanceSession, error) {
	if !session.IsOpen() {
		return session, nil
	}
	now := e.Now()
	session.CheckOutAt = &now
	session.Status = model.SessionStatusAutoClosed
	session.AutoClosedReason = &reason
	if err := e.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("auto-close session: %w", err)
	}
	return session, nil
}

// AutoClosePreviousDaySessions heals stale state lazily: any session of the
// user still open from a previous day is auto-closed with reason
// previous_day_unclosed. Returns the healed session, or nil when there was
// nothing to heal.
func (e *SessionEngine) AutoClosePreviousDaySessions(ctx context.Context, userID uint) (*model.AttendanceSession, error) {
	today := e.startOfToday()

	orphaned, err := e.sessions.LatestOpenCheckedInBefore(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if orphaned == nil {
		return nil, nil
	}
	return e.AutoCloseSession(ctx, orphaned, model.AutoCloseReasonPreviousDay)
}

// SessionsForAutoClose returns every open session checked in before the
// cutoff; the end-of-day sweep iterates these.
func (e *SessionEngine) SessionsForAutoClose(ctx context.Context, cutoff time.Time) ([]model.AttendanceSession, error) {
	return e.sessions.OpenCheckedInBefore(ctx, cutoff)
}

// SessionStatus is the answer to an attendance status query.
type SessionStatus struct {
	Status            string
	Session           *model.AttendanceSession
	AutoClosedSession *model.AttendanceSession
}

// Status heals stale sessions first, then reports whether the user is
// currently checked in to the project.
func (e *SessionEngine) Status(ctx context.Context, userID uint, projectExternalID string) (SessionStatus, error) {
	autoClosed, err := e.AutoClosePreviousDaySessions(ctx, userID)
	if err != nil {
		return SessionStatus{}, err
	}

	open, err := e.GetOpenSession(ctx, userID, projectExternalID)
	if err != nil {
		return SessionStatus{}, err
	}

	status := StatusCheckedOut
	if open != nil {
		status = StatusCheckedIn
	}
	return SessionStatus{Status: status, Session: open, AutoClosedSession: autoClosed}, nil
}

func (e *SessionEngine) startOfToday() time.Time {
	now := e.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
