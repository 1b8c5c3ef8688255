package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vigil-server/internal/models"
)

func record(camera string, alertID uint64) models.AlertRecord {
	return models.AlertRecord{
		AlertID:   alertID,
		CameraID:  camera,
		Timestamp: time.Now().Add(time.Duration(alertID) * time.Second),
		Result: models.ClassificationResult{
			CameraID:   camera,
			Sequence:   alertID * 10,
			IsAlert:    true,
			Confidence: 0.7,
			Region:     &models.Region{X: 1, Y: 2, Width: 3, Height: 4},
		},
	}
}

func TestSaveAndRecent(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, s.Save(ctx, record("cam-1", i)))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, uint64(3), recent[0].AlertID)
	assert.Equal(t, uint64(2), recent[1].AlertID)
	assert.True(t, recent[0].Result.IsAlert)
	require.NotNil(t, recent[0].Result.Region)
	assert.Equal(t, 3, recent[0].Result.Region.Width)
}

func TestPurgeRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, record("cam-1", 1)))

	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, s.Purge(ctx))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "database file should be gone after purge")

	// The store refuses further writes.
	assert.Error(t, s.Save(ctx, record("cam-1", 2)))

	// A second purge is a no-op, not a crash.
	assert.NoError(t, s.Purge(ctx))
}

func TestRecentOnEmptyStore(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	recent, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
