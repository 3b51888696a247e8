package web

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"telegram-bingo-bot/internal/infra/metrics"
)

// MaxUploadBytes caps broadcast images at 5MB.
const MaxUploadBytes = 5 << 20

// allowedImageTypes maps accepted MIME types to the stored extension.
var allowedImageTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// handleUpload accepts one multipart image and stores it under a
// ULID filename, returning the public URL the broadcast composer
// embeds as the image reference.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		metrics.IncUpload("too_large")
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", "Image exceeds the 5MB limit")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		metrics.IncUpload("missing_file")
		writeError(w, http.StatusBadRequest, "missing_file", "Form field 'image' is required")
		return
	}
	defer file.Close()

	mimeType, ext, err := sniffImageType(file, header)
	if err != nil {
		metrics.IncUpload("unsupported_type")
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_type",
			"Only JPEG, PNG, GIF, WebP and SVG images are accepted")
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		s.log.Error().Err(err).Msg("Failed to create upload dir")
		metrics.IncUpload("error")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to store image")
		return
	}

	name := ulid.Make().String() + ext
	path := filepath.Join(s.cfg.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to create upload file")
		metrics.IncUpload("error")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to store image")
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to write upload")
		metrics.IncUpload("error")
		_ = os.Remove(path)
		writeError(w, http.StatusInternalServerError, "internal", "Failed to store image")
		return
	}

	metrics.IncUpload("ok")
	metrics.AddUploadBytes(size)
	s.log.Info().Str("file", name).Int64("bytes", size).Str("mimetype", mimeType).Msg("Image uploaded")

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"url":      fmt.Sprintf("%s/uploads/%s", strings.TrimRight(s.cfg.PublicDomain, "/"), name),
		"filename": name,
		"size":     size,
		"mimetype": mimeType,
	})
}

// sniffImageType determines the MIME type from content, falling back
// to the declared type for SVG which sniffs as XML/plain text.
func sniffImageType(file multipart.File, header *multipart.FileHeader) (mime, ext string, err error) {
	buf := make([]byte, 512)
	n, _ := io.ReadFull(file, buf)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}

	detected := http.DetectContentType(buf[:n])
	if e, ok := allowedImageTypes[detected]; ok {
		return detected, e, nil
	}
	// SVG is text; trust the declared type plus the extension.
	declared := header.Header.Get("Content-Type")
	if declared == "image/svg+xml" &&
		strings.EqualFold(filepath.Ext(header.Filename), ".svg") &&
		strings.HasPrefix(detected, "text/") {
		return declared, ".svg", nil
	}
	return "", "", fmt.Errorf("unsupported content type %q", detected)
}
