package services

import (
	"context"
	"io"

	"github.com/gbonee/hustle-vibes-africa-sub000/utils"
)

// ObjectStore is the object storage collaborator (R2 in production).
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType, filename string) (string, error)
	Remove(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]utils.StoredObject, error)
	PublicURL(key string) string
}

// FileUpload is an incoming file, already opened by the handler.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
