package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"rentacar-backend/internal/logger"
)

var (
	ErrInvalidSignature = errors.New("invalid or expired signature")
	ErrInvalidKey       = errors.New("invalid storage key")
)

// LocalStore keeps documents on the local filesystem and serves them through
// the API's /files route with HMAC-signed, expiring URLs.
type LocalStore struct {
	baseURL string
	rootDir string
	secret  []byte
	now     func() time.Time
}

func NewLocalStore(baseURL, rootDir, secret string) (*LocalStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		baseURL: baseURL,
		rootDir: rootDir,
		secret:  []byte(secret),
		now:     time.Now,
	}, nil
}

func (s *LocalStore) PresignedUploadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return s.signedURL("PUT", key, expiresIn)
}

func (s *LocalStore) PresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	return s.signedURL("GET", key, expiresIn)
}

func (s *LocalStore) signedURL(method, key string, expiresIn time.Duration) (string, error) {
	if !ValidKey(key) {
		return "", ErrInvalidKey
	}
	expires := s.now().Add(expiresIn).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", s.sign(method, key, expires))
	return fmt.Sprintf("%s/files/%s?%s", s.baseURL, key, q.Encode()), nil
}

func (s *LocalStore) sign(method, key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", method, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature produced by PresignedUploadURL or PresignedDownloadURL
func (s *LocalStore) Verify(method, key, expires, sig string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > exp {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(method, key, exp))) {
		return ErrInvalidSignature
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	if !ValidKey(key) {
		return false, 0, ErrInvalidKey
	}
	info, err := os.Stat(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	fullPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	// Write beside the target and rename on success so a partial upload never
	// becomes visible under its key
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), "."+filepath.Base(fullPath)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if size >= 0 && n != size {
		return fmt.Errorf("failed to write file: got %d of %d bytes", n, size)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}
	tmp = nil

	logger.Debug("Stored document", "key", key, "bytes", n, "content_type", contentType)
	return nil
}

// Open returns the stored file for streaming
func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}
	file, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.rootDir, filepath.FromSlash(key))
}
