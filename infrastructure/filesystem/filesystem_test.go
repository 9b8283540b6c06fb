package filesystem

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Save(ctx, "uploads/1", strings.NewReader("pdf bytes")))

	file, err := store.Open(ctx, "uploads/1")
	require.NoError(t, err)
	defer file.Close()

	raw, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(raw))
}

func TestLocalStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Save(ctx, "uploads/1", strings.NewReader("first")))
	require.NoError(t, store.Save(ctx, "uploads/1", strings.NewReader("second")))

	file, err := store.Open(ctx, "uploads/1")
	require.NoError(t, err)
	defer file.Close()

	raw, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "second", string(raw))
}

func TestLocalStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Save(ctx, "uploads/1", strings.NewReader("pdf bytes")))
	require.NoError(t, store.Delete(ctx, "uploads/1"))

	_, err := store.Open(ctx, "uploads/1")
	assert.Error(t, err)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "uploads/1"))
}
