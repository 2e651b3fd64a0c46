package storage

import (
	"context"
	"io"
)

const (
	VisibilityPrivate = "PRIVATE"
	VisibilityPublic  = "PUBLIC"
)

// UploadedObject is the stored artifact's metadata.
type UploadedObject struct {
	PublicID  string
	SecureURL string
	Bytes     int
	Format    string
}

// Gateway abstracts the object storage service.
type Gateway interface {
	Upload(ctx context.Context, r io.Reader, folder string, visibility string) (UploadedObject, error)
	Destroy(ctx context.Context, publicID string) error
	DownloadURL(ctx context.Context, publicID string, visibility string) (string, error)
}
