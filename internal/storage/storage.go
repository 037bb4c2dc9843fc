package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentacar-backend/internal/config"
)

// DocumentStore keeps contract documents and signing evidence (signature,
// fingerprint and photo images, signed PDFs). Clients upload and download
// through presigned URLs; the API only hands out keys and links.
type DocumentStore interface {
	PresignedUploadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
	PresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Exists reports whether key has been uploaded and its size
	Exists(ctx context.Context, key string) (bool, int64, error)

	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// EvidenceKind names the artifact a client is about to upload
type EvidenceKind string

const (
	EvidenceSignature   EvidenceKind = "signature"
	EvidenceFingerprint EvidenceKind = "fingerprint"
	EvidencePhoto       EvidenceKind = "photo"
	EvidenceDocument    EvidenceKind = "document"
)

var evidenceExtensions = map[EvidenceKind]map[string]bool{
	EvidenceSignature:   {".png": true},
	EvidenceFingerprint: {".png": true, ".jpg": true, ".jpeg": true},
	EvidencePhoto:       {".png": true, ".jpg": true, ".jpeg": true},
	EvidenceDocument:    {".pdf": true},
}

// NewEvidenceKey returns a fresh key such as "evidence/signature/<uuid>.png"
func NewEvidenceKey(kind EvidenceKind, filename string) (string, error) {
	allowed, ok := evidenceExtensions[kind]
	if !ok {
		return "", fmt.Errorf("unknown evidence kind %q", kind)
	}
	ext := strings.ToLower(path.Ext(filename))
	if !allowed[ext] {
		return "", fmt.Errorf("file type %q not allowed for %s", ext, kind)
	}
	return fmt.Sprintf("evidence/%s/%s%s", kind, uuid.New().String(), ext), nil
}

// ValidKey rejects keys that could escape the storage root
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	return path.Clean(key) == key && !strings.HasPrefix(key, "..")
}

// ContentTypeFor derives a MIME type from the key extension
func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt":
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

// New builds the store selected by cfg.Type. signingSecret signs local URLs.
func New(cfg config.StorageConfig, signingSecret string) (DocumentStore, error) {
	switch cfg.Type {
	case "minio":
		return NewMinioStore(cfg)
	case "local", "":
		return NewLocalStore(cfg.BaseURL, cfg.UploadDir, signingSecret)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
