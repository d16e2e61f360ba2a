package media

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/config"
)

// Storage downloads provider-hosted attachments into local per-company
// directories and returns the public path they are served from.
type Storage interface {
	Download(ctx context.Context, sourceURL string, companyID, chatID int64) (string, error)
	SaveBytes(companyID, chatID int64, filename string, data []byte) (string, error)
}

type localStorage struct {
	baseDir string
	http    *resty.Client
	logger  *zap.Logger
}

// NewLocalStorage builds attachment storage rooted at the configured media
// directory.
func NewLocalStorage(cfg config.MediaConfig, logger *zap.Logger) Storage {
	http := resty.New().
		SetTimeout(time.Duration(cfg.DownloadTimeoutSeconds) * time.Second)
	return &localStorage{baseDir: cfg.BaseDir, http: http, logger: logger}
}

// Download fetches the attachment and stores it under
// <base>/company_<id>/chat_<id>/<uuid><ext>. The returned path is URL-shaped
// and relative to the server root, suitable for persisting on the message.
func (s *localStorage) Download(ctx context.Context, sourceURL string, companyID, chatID int64) (string, error) {
	resp, err := s.http.R().SetContext(ctx).Get(sourceURL)
	if err != nil {
		return "", fmt.Errorf("download attachment: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("download attachment: source returned %d", resp.StatusCode())
	}

	ext := extensionFor(resp.Header().Get("Content-Type"), sourceURL)
	filename := uuid.NewString() + ext
	return s.SaveBytes(companyID, chatID, filename, resp.Body())
}

// SaveBytes writes already-fetched content. Used by the export importer,
// which reads attachments from the uploaded archive instead of a URL.
func (s *localStorage) SaveBytes(companyID, chatID int64, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, fmt.Sprintf("company_%d", companyID), fmt.Sprintf("chat_%d", chatID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	target := filepath.Join(dir, filename)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	s.logger.Debug("stored attachment",
		zap.Int64("company_id", companyID),
		zap.Int64("chat_id", chatID),
		zap.String("path", target))
	return "/" + path.Join(filepath.ToSlash(s.baseDir),
		fmt.Sprintf("company_%d", companyID),
		fmt.Sprintf("chat_%d", chatID),
		filename), nil
}

// extensionFor derives a file extension from the response content type,
// falling back to whatever the source URL path carries.
func extensionFor(contentType, sourceURL string) string {
	if contentType != "" {
		if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
			switch mediaType {
			case "image/jpeg":
				return ".jpg"
			case "image/png":
				return ".png"
			case "image/webp":
				return ".webp"
			case "image/gif":
				return ".gif"
			case "video/mp4":
				return ".mp4"
			case "audio/ogg", "application/ogg":
				return ".ogg"
			case "audio/mpeg":
				return ".mp3"
			case "audio/mp4":
				return ".m4a"
			case "application/pdf":
				return ".pdf"
			}
			if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
				return exts[0]
			}
		}
	}
	if u, err := url.Parse(sourceURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && len(ext) <= 5 {
			return ext
		}
	}
	return ".bin"
}
