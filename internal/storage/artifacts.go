package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/antoineross/supabase-go"
	storage_go "github.com/supabase-community/storage-go"

	"seoauditor/internal/logger"
)

// Artifacts uploads completed audit result payloads to a Supabase storage
// bucket. Upload failures never affect the audit's terminal status; the
// bucket copy is a convenience for the dashboard, the database row is the
// source of truth.
type Artifacts struct {
	log    *logger.Logger
	client *supabase.Client
	bucket string
}

// NewArtifacts returns nil (disabled) when Supabase is not configured.
func NewArtifacts(url, serviceKey, bucket string) *Artifacts {
	log := logger.New("Artifacts")
	if url == "" || serviceKey == "" || bucket == "" {
		return nil
	}
	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		log.LogWarnf("failed to initialize supabase client: %v", err)
		return nil
	}
	return &Artifacts{log: log, client: client, bucket: bucket}
}

// UploadReport stores the results payload as audits/<auditID>.json and
// returns the bucket path.
func (a *Artifacts) UploadReport(_ context.Context, auditID string, payload []byte) (string, error) {
	if a == nil {
		return "", nil
	}
	bucketPath := path.Join("audits", auditID+".json")
	mimeType := "application/json"
	reader := bytes.NewReader(payload)
	if _, err := a.client.Storage.UploadFile(a.bucket, bucketPath, reader, storage_go.FileOptions{ContentType: &mimeType}); err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	a.log.LogDebugf("uploaded report %s (%d bytes)", bucketPath, len(payload))
	return bucketPath, nil
}
