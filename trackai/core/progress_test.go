package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	saras "trackai.dev/trackai/saras/v1"
)

func newProgressFixture(client *fakeSarasClient, cfg saras.Config) (*ProgressService, *memAuditSink) {
	audit := &memAuditSink{}
	service := NewProgressService(client, audit, cfg, zap.NewNop())
	service.Now = fixedClock(time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))
	return service, audit
}

func disabledConfig() saras.Config {
	cfg := testConfig()
	cfg.Features.ProgressEnabled = false
	return cfg
}

func TestSubmitProgressDisabled(t *testing.T) {
	client := &fakeSarasClient{}
	service, audit := newProgressFixture(client, disabledConfig())

	response, err := service.SubmitProgress(context.Background(), ProgressParams{
		UserID:          7,
		ContractID:      "C-001",
		Description:     "Column pouring at 60%",
		PercentComplete: 60,
	})
	require.NoError(t, err)

	assert.True(t, response.Success, "disabled integrations still report success to the client")
	assert.True(t, strings.HasPrefix(response.EntryID, "local_"), response.EntryID)
	assert.NotEmpty(t, response.CreatedAt)
	assert.Equal(t, 0, client.processCalls, "no remote call behind a disabled flag")
	assert.Empty(t, audit.entries)
}

func TestSubmitProgressEnabled(t *testing.T) {
	client := &fakeSarasClient{}
	service, audit := newProgressFixture(client, testConfig())

	response, err := service.SubmitProgress(context.Background(), ProgressParams{
		UserID:          7,
		ContractID:      "C-001",
		Description:     "Column pouring at 60%",
		PercentComplete: 60,
		ClientRequestID: "prog-1",
	})
	require.NoError(t, err)

	assert.True(t, response.Success)
	assert.Equal(t, 1, client.processCalls)
	assert.Equal(t, "sub-progress", client.lastSubProjectID)
	assert.Equal(t, "prog-1", client.lastIdempotencyKey)
	assert.Equal(t, float64(60), client.lastFields["percentComplete"])
	assert.Equal(t, []string{"progress_submitted"}, audit.actions())
}

func TestSubmitProgressRemoteFailure(t *testing.T) {
	client := &fakeSarasClient{
		createProcess: func(string, map[string]any, string) (saras.ProcessResponse, error) {
			return saras.ProcessResponse{}, &saras.APIError{Kind: saras.KindValidation, Message: "percentComplete out of range"}
		},
	}
	service, audit := newProgressFixture(client, testConfig())

	response, err := service.SubmitProgress(context.Background(), ProgressParams{UserID: 7, ContractID: "C-001"})
	require.NoError(t, err)

	assert.False(t, response.Success)
	assert.Equal(t, "percentComplete out of range", response.Message)
	assert.Empty(t, audit.entries)
}

func TestUploadPhotoDisabled(t *testing.T) {
	client := &fakeSarasClient{}
	service, _ := newProgressFixture(client, disabledConfig())

	response, err := service.UploadPhoto(context.Background(), 7, "site.jpg", saras.FileAttachment{Name: "site.jpg"})
	require.NoError(t, err)

	assert.True(t, response.Success)
	require.Len(t, response.FileIDs, 1)
	assert.True(t, strings.HasPrefix(response.FileIDs[0], "local_"))
	assert.Equal(t, 0, client.uploadCalls)
}

func TestUploadPhotoEnabled(t *testing.T) {
	client := &fakeSarasClient{}
	service, _ := newProgressFixture(client, testConfig())

	response, err := service.UploadPhoto(context.Background(), 7, "site.jpg", saras.FileAttachment{Name: "site.jpg"})
	require.NoError(t, err)

	assert.True(t, response.Success)
	assert.Equal(t, "file-1", response.FirstFileID())
	assert.Equal(t, 1, client.uploadCalls)
}

func TestAIAnalysisStatuses(t *testing.T) {
	client := &fakeSarasClient{}

	disabled, _ := newProgressFixture(client, disabledConfig())
	run, err := disabled.RunAIAnalysis(context.Background(), 7, "C-001")
	require.NoError(t, err)
	assert.False(t, run.Success)
	assert.Equal(t, AIStatusDisabled, run.Status)

	enabled, _ := newProgressFixture(client, testConfig())
	run, err = enabled.RunAIAnalysis(context.Background(), 7, "C-001")
	require.NoError(t, err)
	assert.False(t, run.Success)
	assert.Equal(t, AIStatusNotImplemented, run.Status)

	status, err := enabled.AIStatus(context.Background(), "wf-1")
	require.NoError(t, err)
	assert.Equal(t, AIStatusNotImplemented, status.Status)
	assert.Equal(t, "wf-1", status.WorkflowID)
}
