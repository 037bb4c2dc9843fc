package http

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/storage"
)

// DocumentHandler serves the presigned URLs issued by the local document
// store. It is only mounted when documents live on the local filesystem.
type DocumentHandler struct {
	store *storage.LocalStore
}

func NewDocumentHandler(store *storage.LocalStore) *DocumentHandler {
	return &DocumentHandler{store: store}
}

// HandleUpload handles HTTP PUT requests to presigned upload URLs
func (h *DocumentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	q := r.URL.Query()
	if err := h.store.Verify(http.MethodPut, key, q.Get("expires"), q.Get("sig")); err != nil {
		writeStatusError(w, r, http.StatusForbidden, "invalid_signature", err.Error())
		return
	}

	// Content type must match the extension the key was issued for
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	want, _, _ := mime.ParseMediaType(storage.ContentTypeFor(key))
	if err != nil || mediaType != want {
		writeStatusError(w, r, http.StatusBadRequest, "invalid_content_type", "content type must be "+want)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := h.store.Put(r.Context(), key, body, r.ContentLength, mediaType); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatusError(w, r, http.StatusRequestEntityTooLarge, "too_large", "document exceeds the size limit")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to store document", "key", key, "error", err)
		writeStatusError(w, r, http.StatusInternalServerError, "internal_error", "failed to save file")
		return
	}

	w.Header().Set("ETag", `"`+key+`"`)
	w.WriteHeader(http.StatusOK)
}

// HandleDownload handles HTTP GET requests to presigned download URLs
func (h *DocumentHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	q := r.URL.Query()
	if err := h.store.Verify(http.MethodGet, key, q.Get("expires"), q.Get("sig")); err != nil {
		writeStatusError(w, r, http.StatusForbidden, "invalid_signature", err.Error())
		return
	}

	file, err := h.store.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeStatusError(w, r, http.StatusNotFound, "not_found", "file not found")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to open document", "key", key, "error", err)
		writeStatusError(w, r, http.StatusInternalServerError, "internal_error", "failed to read file")
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", storage.ContentTypeFor(key))
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Document download interrupted", "key", key, "error", err)
	}
}

const maxDocumentBytes = 20 << 20
