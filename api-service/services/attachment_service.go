package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"taskhive-backend/shared/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AttachmentService stores todo attachments in a MinIO bucket
type AttachmentService struct {
	client     *minio.Client
	bucketName string
	serverURL  string
}

// NewAttachmentService connects to MinIO and ensures the attachment bucket exists
func NewAttachmentService() (*AttachmentService, error) {
	cfg := config.GetConfig()

	// Parse endpoint URL to get host
	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %v", err)
	}

	endpoint := parsedURL.Host
	useSSL := cfg.MinIOUseSSL

	log.Printf("🔗 Connecting to MinIO: %s (SSL: %v)", endpoint, useSSL)

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	service := &AttachmentService{
		client:     minioClient,
		bucketName: cfg.MinIOBucketName,
		serverURL:  strings.TrimRight(cfg.MinIOServerURL, "/"),
	}

	if err := service.initializeBucket(); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *AttachmentService) initializeBucket() error {
	ctx := context.Background()

	log.Printf("🪣 Checking bucket: %s", s.bucketName)

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("✅ MinIO bucket '%s' created successfully", s.bucketName)
	} else {
		log.Printf("✅ MinIO bucket '%s' already exists", s.bucketName)
	}

	return nil
}

// UploadAttachment stores a file under todos/<todoID>/ and returns its object URL
func (s *AttachmentService) UploadAttachment(ctx context.Context, todoID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	// Unique key per upload so re-uploading the same file name never clobbers
	ext := path.Ext(fileName)
	objectKey := fmt.Sprintf("todos/%s/%d-%s%s", todoID, time.Now().UTC().Unix(), uuid.NewString()[:8], ext)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload attachment: %v", err)
	}

	log.Printf("✅ Attachment uploaded: %s", objectKey)
	return fmt.Sprintf("%s/%s/%s", s.serverURL, s.bucketName, objectKey), nil
}

// DeleteAttachments removes every stored object for a todo
func (s *AttachmentService) DeleteAttachments(ctx context.Context, todoID string) error {
	prefix := fmt.Sprintf("todos/%s/", todoID)

	objectCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var errors []string
	for object := range objectCh {
		if object.Err != nil {
			errors = append(errors, fmt.Sprintf("list error: %v", object.Err))
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucketName, object.Key, minio.RemoveObjectOptions{}); err != nil {
			errors = append(errors, fmt.Sprintf("failed to delete %s: %v", object.Key, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("failed to delete some attachments: %v", errors)
	}
	return nil
}

// TestConnection verifies the MinIO connection by listing buckets
func (s *AttachmentService) TestConnection() error {
	ctx := context.Background()

	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %v", err)
	}

	log.Printf("✅ MinIO connection successful. Found %d buckets", len(buckets))
	return nil
}
