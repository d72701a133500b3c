package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"ai-tools-backend/internal/apperr"
	"ai-tools-backend/internal/artifacts"
	"ai-tools-backend/internal/models"
	storage "github.com/supabase-community/storage-go"
)

// ObjectUploader is the slice of storage-go the store needs.
type ObjectUploader interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
}

// StorageClient hosts artifacts in a public Supabase Storage bucket.
type StorageClient struct {
	client  ObjectUploader
	bucket  string
	baseURL string
}

func NewStorageClient(root *Client, bucket string) *StorageClient {
	return NewStorageClientFromUploader(root.Supabase.Storage, root.Config.SupabaseURL, bucket)
}

func NewStorageClientFromUploader(client ObjectUploader, supabaseURL, bucket string) *StorageClient {
	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(supabaseURL, "/"),
	}
}

func (s *StorageClient) Name() string { return "supabase-storage" }

func (s *StorageClient) Put(ctx context.Context, art *models.Artifact, key string) (*artifacts.Object, error) {
	if err := artifacts.Validate(art); err != nil {
		return nil, err
	}
	if len(art.Data) == 0 {
		return nil, apperr.New(apperr.KindStorageUnavailable, "supabase storage cannot ingest remote references")
	}

	storagePath := key + extensionFor(art.MimeKind)
	contentType := art.MimeKind
	upsert := false
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(art.Data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorageUnavailable, "failed to upload file", err)
	}

	return &artifacts.Object{
		ID:       storagePath,
		URL:      s.GetPublicURL(storagePath),
		MimeKind: art.MimeKind,
	}, nil
}

// EffectURL always refuses: Storage only resizes, it has no generative effects.
func (s *StorageClient) EffectURL(ctx context.Context, obj *artifacts.Object, effect artifacts.Effect) (string, error) {
	return "", apperr.New(apperr.KindEffectRejected, fmt.Sprintf("supabase storage does not support effect %q", effect.Name))
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}
