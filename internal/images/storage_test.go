package images

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/worklog/domain"
	"github.com/fastygo/worklog/internal/config"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func bytesUpload(name string, data []byte) Upload {
	return Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(string(data))), nil
		},
	}
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(config.UploadConfig{
		Dir:          filepath.Join(t.TempDir(), "uploads"),
		URLPrefix:    "/uploads/",
		MaxFileBytes: 1 << 10,
	}, nil)
	require.NoError(t, err)
	return s
}

func TestStorageSaveWritesGeneratedName(t *testing.T) {
	s := newTestStorage(t)

	locator, err := s.Save(bytesUpload("../../etc/photo.PNG", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(locator, "/uploads/"))
	assert.True(t, strings.HasSuffix(locator, ".PNG"))
	assert.True(t, s.Managed(locator))

	data, err := os.ReadFile(filepath.Join(s.Dir(), strings.TrimPrefix(locator, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestStorageSaveRejectsNonImagesAndOversize(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Save(bytesUpload("notes.txt", []byte("just some text")))
	assert.ErrorIs(t, err, domain.ErrNotAnImage)

	big := append(append([]byte{}, pngBytes...), make([]byte, 2<<10)...)
	_, err = s.Save(bytesUpload("big.png", big))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorageSaveAllIsAllOrNothing(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.SaveAll([]Upload{
		bytesUpload("a.png", pngBytes),
		bytesUpload("b.txt", []byte("plain")),
	})
	assert.ErrorIs(t, err, domain.ErrNotAnImage)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	locators, err := s.SaveAll([]Upload{bytesUpload("a.png", pngBytes), bytesUpload("b.png", pngBytes)})
	require.NoError(t, err)
	assert.Len(t, locators, 2)
	assert.NotEqual(t, locators[0], locators[1])
}

func TestStorageRemoveIsBestEffortAndScoped(t *testing.T) {
	s := newTestStorage(t)

	locator, err := s.Save(bytesUpload("a.png", pngBytes))
	require.NoError(t, err)

	require.NoError(t, s.Remove(locator))
	_, err = os.Stat(filepath.Join(s.Dir(), strings.TrimPrefix(locator, "/uploads/")))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(locator), "already absent is not an error")

	outside := filepath.Join(filepath.Dir(s.Dir()), "keep.png")
	require.NoError(t, os.WriteFile(outside, pngBytes, 0o644))
	for _, foreign := range []string{outside, "/uploads/../keep.png", "https://cdn.test/keep.png", "/uploads/"} {
		assert.NoError(t, s.Remove(foreign))
		assert.False(t, s.Managed(foreign), foreign)
	}
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestSafeExt(t *testing.T) {
	assert.Equal(t, ".png", safeExt("photo.png"))
	assert.Equal(t, ".jpeg", safeExt(`C:\pics\cat.jpeg`))
	assert.Equal(t, "", safeExt("noext"))
	assert.Equal(t, "", safeExt("evil.p%2Fng"))
	assert.Equal(t, ".abcdefghi", safeExt("x.abcdefghijklmn"))
}
