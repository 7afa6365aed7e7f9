package utils

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

var (
	ErrFileEmpty       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

const (
	MaxSubmissionSize = 50 * 1024 * 1024  // 50MB
	MaxVideoSize      = 500 * 1024 * 1024 // 500MB
)

// SubmissionTypes are accepted for challenge submissions. Entries ending in
// "/" match a whole family.
var SubmissionTypes = []string{
	"video/",
	"image/",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var VideoTypes = []string{"video/"}

// ValidateUpload rejects files before anything goes over the network.
func ValidateUpload(size int64, contentType string, maxSize int64, allowed []string) error {
	if size <= 0 {
		return ErrFileEmpty
	}
	if size > maxSize {
		return fmt.Errorf("%w (max %d MB)", ErrFileTooLarge, maxSize/(1024*1024))
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, a := range allowed {
		if strings.HasSuffix(a, "/") && strings.HasPrefix(ct, a) {
			return nil
		}
		if ct == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
}

// knownExtensions covers upload types missing from Go's builtin mime table,
// so detection does not depend on the host's mime.types.
var knownExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".3gp":  "video/3gpp",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// DetectContentType prefers the declared header and falls back to the extension.
func DetectContentType(declared, filename string) string {
	if ct, _, err := mime.ParseMediaType(declared); err == nil && ct != "" && ct != "application/octet-stream" {
		return ct
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := knownExtensions[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		if base, _, err := mime.ParseMediaType(ct); err == nil {
			return base
		}
	}
	return "application/octet-stream"
}

// ObjectKey returns "<prefix>/<unix-nanos>-<slug><ext>".
func ObjectKey(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s/%d-%s%s", strings.Trim(prefix, "/"), now.UnixNano(), base, ext)
}
