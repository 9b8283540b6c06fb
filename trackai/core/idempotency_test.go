package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceFallbackKey(t *testing.T) {
	now := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)

	key := attendanceFallbackKey("check_in", 7, "C-001", now)
	assert.True(t, strings.HasPrefix(key, "attendance_check_in_7_C-001_2026-03-05_"), key)
	assert.Len(t, strings.TrimPrefix(key, "attendance_check_in_7_C-001_2026-03-05_"), 8)

	// The random suffix means fallback keys are not replay safe.
	other := attendanceFallbackKey("check_in", 7, "C-001", now)
	assert.NotEqual(t, key, other)
}

func TestFallbackKey(t *testing.T) {
	now := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)

	key := fallbackKey("progress", "submit", 7, "C-001", now)
	prefix := "progress_submit_7_C-001_1772697600_"
	assert.True(t, strings.HasPrefix(key, prefix), key)
	assert.Len(t, strings.TrimPrefix(key, prefix), 8)
}

func TestRandomSuffix(t *testing.T) {
	suffix := randomSuffix()
	assert.Len(t, suffix, 8)
	assert.NotContains(t, suffix, "-")
}
