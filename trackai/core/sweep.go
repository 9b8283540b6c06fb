package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trackai.dev/trackai/trackai/model"
)

// DefaultSweepCutoff is the end-of-day cutoff used when the scheduler does
// not pass one.
const DefaultSweepCutoff = "22:00"

// AutoCheckoutSweeper is the end-of-day sweep: every session still open at
// the cutoff is auto-closed with reason end_of_day. It is invoked by an
// external scheduler, never by the request path.
type AutoCheckoutSweeper struct {
	sessions *SessionEngine
	log      *zap.Logger

	Now func() time.Time
}

func NewAutoCheckoutSweeper(sessions *SessionEngine, log *zap.Logger) *AutoCheckoutSweeper {
	return &AutoCheckoutSweeper{sessions: sessions, log: log, Now: time.Now}
}

// SweptSession is one session the sweep closed (or would close in dry-run).
type SweptSession struct {
	SessionID         uint      `json:"session_id"`
	UserID            uint      `json:"user_id"`
	ProjectExternalID string    `json:"project_external_id"`
	CheckInAt         time.Time `json:"check_in_at"`
}

// SweepResult reports one sweep run.
type SweepResult struct {
	Cutoff time.Time      `json:"cutoff"`
	DryRun bool           `json:"dry_run"`
	Swept  []SweptSession `json:"swept"`
}

// Run closes every open session checked in before today's cutoff. The
// cutoff is a wall-clock "HH:MM" in the process's local time. In dry-run
// mode the result lists the sessions without mutating any of them.
func (s *AutoCheckoutSweeper) Run(ctx context.Context, cutoffClock string, dryRun bool) (SweepResult, error) {
	if cutoffClock == "" {
		cutoffClock = DefaultSweepCutoff
	}
	cutoff, err := s.cutoffToday(cutoffClock)
	if err != nil {
		return SweepResult{}, err
	}

	sessions, err := s.sessions.SessionsForAutoClose(ctx, cutoff)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Cutoff: cutoff, DryRun: dryRun}
	for i := range sessions {
		session := &sessions[i]
		if !dryRun {
			if _, err := s.sessions.AutoCloseSession(ctx, session, model.AutoCloseReasonEndOfDay); err != nil {
				return SweepResult{}, err
			}
		}
		result.Swept = append(result.Swept, SweptSession{
			SessionID:         session.ID,
			UserID:            session.UserID,
			ProjectExternalID: session.ProjectExternalID,
			CheckInAt:         session.CheckInAt,
		})
	}

	s.log.Info("auto-checkout sweep finished",
		zap.Time("cutoff", cutoff),
		zap.Bool("dry_run", dryRun),
		zap.Int("swept", len(result.Swept)),
	)
	return result, nil
}

func (s *AutoCheckoutSweeper) cutoffToday(clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cutoff %q: %w", clock, err)
	}
	now := s.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location()), nil
}
