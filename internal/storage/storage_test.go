package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar-backend/internal/config"
)

func TestNewEvidenceKey(t *testing.T) {
	key, err := NewEvidenceKey(EvidenceSignature, "firma.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "evidence/signature/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.True(t, ValidKey(key))

	_, err = NewEvidenceKey(EvidenceDocument, "contract.docx")
	assert.Error(t, err)

	_, err = NewEvidenceKey("selfie", "a.png")
	assert.Error(t, err)
}

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"evidence/photo/a.jpg", true},
		{"contracts/CT-1234ABCD.pdf", true},
		{"", false},
		{"/etc/passwd", false},
		{"../secret", false},
		{"evidence/../../secret", false},
		{"evidence//a.png", false},
		{"evidence\\a.png", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidKey(tt.key), tt.key)
	}
}

func TestLocalStore_SignedURLs(t *testing.T) {
	s, err := NewLocalStore("http://localhost:8080", t.TempDir(), "0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	raw, err := s.PresignedDownloadURL(context.Background(), "evidence/signature/a.png", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/files/evidence/signature/a.png", u.Path)
	expires, sig := u.Query().Get("expires"), u.Query().Get("sig")

	assert.NoError(t, s.Verify("GET", "evidence/signature/a.png", expires, sig))
	assert.ErrorIs(t, s.Verify("PUT", "evidence/signature/a.png", expires, sig), ErrInvalidSignature)
	assert.ErrorIs(t, s.Verify("GET", "evidence/signature/b.png", expires, sig), ErrInvalidSignature)

	s.now = func() time.Time { return fixed.Add(2 * time.Hour) }
	assert.ErrorIs(t, s.Verify("GET", "evidence/signature/a.png", expires, sig), ErrInvalidSignature)

	_, err = s.PresignedUploadURL(context.Background(), "../escape", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLocalStore_PutExistsDelete(t *testing.T) {
	s, err := NewLocalStore("http://localhost:8080", t.TempDir(), "secret")
	require.NoError(t, err)
	ctx := context.Background()
	key := "evidence/document/signed.pdf"

	exists, _, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Put(ctx, key, strings.NewReader("%PDF-1.7"), 8, ContentTypeFor(key)))

	exists, size, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(8), size)

	rc, err := s.Open(key)
	require.NoError(t, err)
	rc.Close()

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	exists, _, _ = s.Exists(ctx, key)
	assert.False(t, exists)
}

// failingReader yields data and then fails, like a client that disconnects mid-upload
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestLocalStore_PutFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore("http://localhost:8080", dir, "secret")
	require.NoError(t, err)
	ctx := context.Background()
	key := "evidence/signature/abc.png"

	t.Run("ReaderError", func(t *testing.T) {
		disconnected := errors.New("client disconnected")
		err := s.Put(ctx, key, &failingReader{data: []byte("\x89PNG"), err: disconnected}, 64, ContentTypeFor(key))
		require.ErrorIs(t, err, disconnected)

		exists, _, err := s.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("ShortBody", func(t *testing.T) {
		err := s.Put(ctx, key, strings.NewReader("\x89PNG"), 64, ContentTypeFor(key))
		require.Error(t, err)

		exists, _, err := s.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("FailedRetryKeepsPreviousUpload", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, key, strings.NewReader("complete"), -1, ContentTypeFor(key)))

		err := s.Put(ctx, key, &failingReader{data: []byte("par"), err: io.ErrUnexpectedEOF}, -1, ContentTypeFor(key))
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)

		exists, size, err := s.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, int64(len("complete")), size)
	})

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Join(dir, "evidence", "signature"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc.png", entries[0].Name())
}

func TestMinioStore_PresignedDownloadURL(t *testing.T) {
	s, err := NewMinioStore(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "contracts",
		Region:    "us-east-1",
	})
	require.NoError(t, err)

	raw, err := s.PresignedDownloadURL(context.Background(), "evidence/document/signed.pdf", 72*time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/contracts/evidence/document/signed.pdf", u.Path)
	assert.Equal(t, "259200", u.Query().Get("X-Amz-Expires"))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentTypeFor("a/b.PDF"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("a/b.jpeg"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("a/b"))
}
