package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"badgepress/internal/imaging"
	"badgepress/internal/models"
	"badgepress/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed upload size (20 MB).
	maxUploadSize = 20 << 20

	// presignExpiry is how long a presigned asset URL stays valid.
	presignExpiry = 1 * time.Hour
)

// allowedUploadTypes are the MIME types accepted for asset upload,
// sniffed from content. Every accepted upload is re-encoded to PNG by
// normalization, so this list never reaches the renderer.
var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// AssetsList returns all uploaded assets, newest first.
func (a *API) AssetsList(w http.ResponseWriter, r *http.Request) {
	assets, err := a.assets.List(r.Context())
	if err != nil {
		slog.Error("list assets failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list assets.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

// AssetUpload handles multipart upload: sniff the type, normalize to
// PNG, store the object and its thumbnail, then the metadata row.
func (a *API) AssetUpload(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 20 MB.")
		return
	}

	// Detect content type by sniffing the first 512 bytes; the filename
	// is never trusted.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	if !allowedUploadTypes[contentType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File type %q is not allowed.", contentType))
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process file.")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}

	normalized, err := imaging.Normalize(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Cannot process image: "+err.Error())
		return
	}

	id := uuid.New()
	key := storage.AssetKey(time.Now(), id.String()+".png")

	ctx := r.Context()
	if err := a.storage.Upload(ctx, key, normalized.ContentType, normalized.Data); err != nil {
		slog.Error("asset upload failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Failed to upload file.")
		return
	}

	// Thumbnail is best-effort: the library view falls back to the full
	// asset when it is missing.
	if thumb, _, _, err := imaging.Thumbnail(normalized.Data); err != nil {
		slog.Warn("thumbnail generation failed", "error", err, "key", key)
	} else if err := a.storage.Upload(ctx, thumbKeyFor(key), "image/jpeg", thumb); err != nil {
		slog.Warn("thumbnail upload failed", "error", err, "key", thumbKeyFor(key))
	}

	asset := &models.Asset{
		ID:           id,
		OriginalName: header.Filename,
		ContentType:  normalized.ContentType,
		SizeBytes:    int64(len(normalized.Data)),
		Width:        normalized.Width,
		Height:       normalized.Height,
		Bucket:       a.storage.Bucket(),
		S3Key:        key,
	}
	created, err := a.assets.Create(ctx, asset)
	if err != nil {
		slog.Error("asset db insert failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Failed to save file metadata.")
		return
	}

	slog.Info("asset uploaded", "id", created.ID, "name", created.OriginalName,
		"size", created.SizeBytes, "dimensions", fmt.Sprintf("%dx%d", created.Width, created.Height))
	writeJSON(w, http.StatusCreated, created)
}

// AssetServe redirects to a time-limited presigned URL for the object.
// A ?thumb query selects the thumbnail variant.
func (a *API) AssetServe(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	asset, err := a.assets.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("asset lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load asset.")
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found.")
		return
	}

	key := asset.S3Key
	if r.URL.Query().Has("thumb") {
		key = thumbKeyFor(key)
	}
	url, err := a.storage.PresignedURL(r.Context(), key, presignExpiry)
	if err != nil {
		slog.Error("presign failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Failed to build asset URL.")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// AssetDelete removes the metadata row, then best-effort cleans up the
// objects. Cached render artifacts may embed the deleted pixels, so the
// whole render cache goes with it.
func (a *API) AssetDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	asset, err := a.assets.FindByID(ctx, id)
	if err != nil {
		slog.Error("asset lookup failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load asset.")
		return
	}
	if asset == nil {
		writeError(w, http.StatusNotFound, "Asset not found.")
		return
	}

	if err := a.assets.Delete(ctx, id); err != nil {
		slog.Error("asset db delete failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete asset.")
		return
	}

	if a.storage != nil {
		if err := a.storage.Delete(ctx, asset.S3Key); err != nil {
			slog.Warn("s3 object delete failed", "error", err, "key", asset.S3Key)
		}
		if err := a.storage.Delete(ctx, thumbKeyFor(asset.S3Key)); err != nil {
			slog.Warn("s3 thumbnail delete failed", "error", err, "key", thumbKeyFor(asset.S3Key))
		}
	}
	if a.renderCache != nil {
		a.renderCache.InvalidateAll(ctx)
	}
	if f, ok := a.assetImages.(interface{ Forget(string) }); ok {
		f.Forget(id.String())
	}

	w.WriteHeader(http.StatusNoContent)
}

// thumbKeyFor derives the thumbnail object key from the original's.
func thumbKeyFor(key string) string {
	return strings.TrimSuffix(key, ".png") + "_thumb.jpg"
}
