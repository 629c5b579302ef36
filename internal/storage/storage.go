package storage

import "context"

// UploadResult contains the result of a storage upload
type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Region string `json:"region"`
	Size   int64  `json:"size"`
}

// ImageStore is the object store surface the handlers depend on.
type ImageStore interface {
	UploadImage(ctx context.Context, data []byte, key, contentType string) (*UploadResult, error)
	DeleteFile(ctx context.Context, key string) error
	PublicURL(key string) string
}
