package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== BootMark Tests ====================

func TestReadBootMark_MissingFile(t *testing.T) {
	mark, err := ReadBootMark(filepath.Join(t.TempDir(), "previous_boot.json"), nil)
	assert.NoError(t, err)
	assert.Nil(t, mark)
}

func TestReadBootMark_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_boot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	mark, err := ReadBootMark(path, nil)
	// a corrupt marker must not stop the bot from booting
	assert.NoError(t, err)
	assert.Nil(t, mark)
}

func TestBootMark_WriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_boot.json")
	shutdown := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, WriteBootMark(path, &BootMark{
		ShutdownAt:    shutdown,
		LastMessageID: 42,
	}))

	mark, err := ReadBootMark(path, nil)
	require.NoError(t, err)
	require.NotNil(t, mark)
	assert.True(t, mark.ShutdownAt.Equal(shutdown))
	assert.EqualValues(t, 42, mark.LastMessageID)
}

func TestWriteBootMark_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "previous_boot.json")

	require.NoError(t, WriteBootMark(path, &BootMark{ShutdownAt: time.Now().UTC(), LastMessageID: 1}))
	require.NoError(t, WriteBootMark(path, &BootMark{ShutdownAt: time.Now().UTC(), LastMessageID: 2}))

	mark, err := ReadBootMark(path, nil)
	require.NoError(t, err)
	require.NotNil(t, mark)
	assert.EqualValues(t, 2, mark.LastMessageID)

	// the temp file from the atomic rename must not linger
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
