package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackai.dev/trackai/trackai/model"
	"trackai.dev/trackai/utils"
)

func TestOpenCloseSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	engine := NewSessionEngine(sessions)

	checkIn := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	engine.Now = fixedClock(checkIn)

	session, err := engine.OpenSession(ctx, 7, "proj-1", 14.5995, 120.9842, utils.Ptr("site visit"))
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusOpen, session.Status)
	assert.Equal(t, checkIn, session.CheckInAt)
	assert.Nil(t, session.DurationMinutes())

	engine.Now = fixedClock(checkIn.Add(8*time.Hour + 30*time.Minute))
	closed, err := engine.CloseSession(ctx, session, 14.6, 120.99, nil)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusClosed, closed.Status)
	require.NotNil(t, closed.CheckOutAt)
	require.NotNil(t, closed.DurationMinutes())
	assert.Equal(t, 510, *closed.DurationMinutes())

	open, err := engine.GetOpenSession(ctx, 7, "proj-1")
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestCanCheckIn(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	engine := NewSessionEngine(sessions)
	engine.Now = fixedClock(time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC))

	can, err := engine.CanCheckIn(ctx, 7, "proj-1")
	require.NoError(t, err)
	assert.True(t, can)

	_, err = engine.OpenSession(ctx, 7, "proj-1", 0, 0, nil)
	require.NoError(t, err)

	can, err = engine.CanCheckIn(ctx, 7, "proj-1")
	require.NoError(t, err)
	assert.False(t, can, "open session blocks a second check-in on the same project")

	can, err = engine.CanCheckIn(ctx, 7, "proj-2")
	require.NoError(t, err)
	assert.True(t, can, "other projects are unaffected")

	can, err = engine.CanCheckIn(ctx, 8, "proj-1")
	require.NoError(t, err)
	assert.True(t, can, "other users are unaffected")
}

func TestAutoClosePreviousDaySessions(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	engine := NewSessionEngine(sessions)

	yesterday := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)
	engine.Now = fixedClock(yesterday)
	stale, err := engine.OpenSession(ctx, 7, "proj-1", 0, 0, nil)
	require.NoError(t, err)

	today := time.Date(2026, 3, 5, 7, 30, 0, 0, time.UTC)
	engine.Now = fixedClock(today)

	healed, err := engine.AutoClosePreviousDaySessions(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, healed)
	assert.Equal(t, stale.ID, healed.ID)
	assert.Equal(t, model.SessionStatusAutoClosed, healed.Status)
	require.NotNil(t, healed.AutoClosedReason)
	assert.Equal(t, model.AutoCloseReasonPreviousDay, *healed.AutoClosedReason)
	require.NotNil(t, healed.CheckOutAt)
	assert.Equal(t, today, *healed.CheckOutAt)
	assert.Nil(t, healed.CheckOutLatitude, "auto-close records no checkout geolocation")

	// Healing is one-shot; a second pass finds nothing.
	again, err := engine.AutoClosePreviousDaySessions(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestAutoClosePreviousDaySessionsIgnoresToday(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	engine := NewSessionEngine(sessions)

	engine.Now = fixedClock(time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC))
	_, err := engine.OpenSession(ctx, 7, "proj-1", 0, 0, nil)
	require.NoError(t, err)

	engine.Now = fixedClock(time.Date(2026, 3, 5, 17, 0, 0, 0, time.UTC))
	healed, err := engine.AutoClosePreviousDaySessions(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, healed, "same-day sessions are left open")

	open, err := engine.GetOpenSession(ctx, 7, "proj-1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, model.SessionStatusOpen, open.Status)
}

func TestAutoCloseSessionAlreadyClosed(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	engine := NewSessionEngine(sessions)
	engine.Now = fixedClock(time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC))

	session, err := engine.OpenSession(ctx, 7, "proj-1", 0, 0, nil)
	require.NoError(t, err)
	_, err = engine.CloseSession(ctx, session, 0, 0, nil)
	require.NoError(t, err)

	result, err := engine.AutoCloseSession(ctx, session, model.AutoCloseReasonEndOfDay)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusClosed, result.Status)
	assert.Nil(t, result.AutoClosedReason, "a closed session is never auto-closed on top")
}

func TestStatusHealsBeforeReporting(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	engine := NewSessionEngine(sessions)

	engine.Now = fixedClock(time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC))
	_, err := engine.OpenSession(ctx, 7, "proj-1", 0, 0, nil)
	require.NoError(t, err)

	engine.Now = fixedClock(time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC))
	status, err := engine.Status(ctx, 7, "proj-1")
	require.NoError(t, err)

	assert.Equal(t, StatusCheckedOut, status.Status)
	assert.Nil(t, status.Session)
	require.NotNil(t, status.AutoClosedSession)
	assert.Equal(t, model.SessionStatusAutoClosed, status.AutoClosedSession.Status)
}

func TestStatusCheckedIn(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	engine := NewSessionEngine(sessions)
	engine.Now = fixedClock(time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC))

	session, err := engine.OpenSession(ctx, 7, "proj-1", 0, 0, nil)
	require.NoError(t, err)

	status, err := engine.Status(ctx, 7, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, status.Status)
	require.NotNil(t, status.Session)
	assert.Equal(t, session.ID, status.Session.ID)
	assert.Nil(t, status.AutoClosedSession)
}
