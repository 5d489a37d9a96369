package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) FileStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

// ==================== Save Tests ====================

func TestSave_RoundTrip(t *testing.T) {
	store := newTestStorage(t)

	path, err := store.Save("image.png", strings.NewReader("fake png bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.True(t, strings.HasSuffix(path, ".png"))

	f, err := store.Get(path)
	require.NoError(t, err)
	defer f.Close()

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(content))
}

func TestSave_CollisionFreeNames(t *testing.T) {
	store := newTestStorage(t)

	path1, err := store.Save("image.png", strings.NewReader("first"))
	require.NoError(t, err)
	path2, err := store.Save("image.png", strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, path1, path2)
}

func TestSave_BlockedExtension(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.Save("malware.exe", strings.NewReader("mz"))
	assert.ErrorIs(t, err, ErrBlockedExt)
}

// ==================== ValidateFile Tests ====================

func TestValidateFile(t *testing.T) {
	assert.NoError(t, ValidateFile("photo.jpg", 1024))
	assert.ErrorIs(t, ValidateFile("script.ps1", 10), ErrBlockedExt)
	assert.ErrorIs(t, ValidateFile("SCRIPT.EXE", 10), ErrBlockedExt)
	assert.ErrorIs(t, ValidateFile("big.png", MaxFileSize+1), ErrFileTooLarge)
}

// ==================== Path Traversal Tests ====================

func TestGet_PathTraversal(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.Get("../../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)

	_, err = store.Get("/etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.Get("ab/missing.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

// ==================== Delete Tests ====================

func TestDelete_RemovesFile(t *testing.T) {
	store := newTestStorage(t)

	path, err := store.Save("image.png", strings.NewReader("bytes"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(path))

	_, err = store.Get(path)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	store := newTestStorage(t)

	assert.ErrorIs(t, store.Delete("ab/missing.png"), ErrFileNotFound)
}
