package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Idempotency keys come from two clearly distinct paths:
//
//   - The client-supplied client_request_id, generated once in the offline
//     queue. This is the deterministic path and the only one safe for
//     offline replay; it is threaded unchanged to the upstream header.
//   - The fallback below, used only when the client supplied nothing. Its
//     random suffix means a retry of the same logical action produces a
//     different key, so it is NOT replay safe.

// attendanceFallbackKey builds a fallback key for check-in/check-out.
func attendanceFallbackKey(action string, userID uint, contractID string, now time.Time) string {
	return fmt.Sprintf("attendance_%s_%d_%s_%s_%s",
		action, userID, contractID, now.Format("2006-01-02"), randomSuffix())
}

// fallbackKey builds a fallback key for upload and progress actions.
func fallbackKey(scope, action string, userID uint, contractID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d_%s_%d_%s",
		scope, action, userID, contractID, now.Unix(), randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
