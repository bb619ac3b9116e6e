package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/princinho/o3dstudio/config"
	"github.com/princinho/o3dstudio/models"
)

// ObjectStore keeps uploaded reference files.
type ObjectStore interface {
	Put(ctx context.Context, objectName, contentType string, body io.Reader) (publicURL string, err error)
	Delete(ctx context.Context, objectName string) error
}

// NewObjectStore builds the store selected by STORAGE_PROVIDER. It returns a
// nil store when uploads are disabled.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Provider {
	case "", config.StorageNone:
		return nil, nil
	case config.StorageGCS:
		return NewGCSStore(ctx, cfg)
	case config.StorageR2:
		return NewR2Store(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
}

type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		path := cfg.CredentialsFile
		if !filepath.IsAbs(path) {
			wd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(wd, path)
		}
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, path))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.GCSBucket}, nil
}

func (g *GCSStore) Put(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload close: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectName), nil
}

func (g *GCSStore) Delete(ctx context.Context, objectName string) error {
	if err := g.client.Bucket(g.bucket).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", objectName, err)
	}
	return nil
}

// R2Store talks to Cloudflare R2 through its S3 compatible api.
type R2Store struct {
	s3           *s3.Client
	bucket       string
	publicDomain string
}

func NewR2Store(ctx context.Context, cfg config.StorageConfig) (*R2Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		o.UsePathStyle = true
	})
	return &R2Store{
		s3:           client,
		bucket:       cfg.R2Bucket,
		publicDomain: strings.TrimRight(cfg.R2PublicDomain, "/"),
	}, nil
}

func (r *R2Store) Put(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	_, err := r.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r.bucket),
		Key:          aws.String(objectName),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return fmt.Sprintf("%s/%s/%s", r.publicDomain, r.bucket, objectName), nil
}

func (r *R2Store) Delete(ctx context.Context, objectName string) error {
	_, err := r.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectName, err)
	}
	return nil
}

// ReferenceObjectName builds quote-forms/<form>/<project-slug>-<unix>-<uuid><ext>.
func ReferenceObjectName(formID, projectName, fileName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".bin"
	}
	slug := GenerateSlug(projectName)
	if slug == "" {
		slug = "project"
	}
	return fmt.Sprintf("quote-forms/%s/%s-%d-%s%s", formID, slug, now.UTC().Unix(), uuid.NewString(), ext)
}

// UploadReferenceFile stores a validated reference file for a quote form.
func UploadReferenceFile(
	ctx context.Context,
	store ObjectStore,
	formID string,
	projectName string,
	fh *multipart.FileHeader,
	contentType string,
) (*models.Attachment, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if contentType == "" {
		contentType = fh.Header.Get("Content-Type")
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	now := time.Now().UTC()
	objectName := ReferenceObjectName(formID, projectName, fh.Filename, now)
	url, err := store.Put(ctx, objectName, contentType, file)
	if err != nil {
		return nil, err
	}

	return &models.Attachment{
		PublicURL:  url,
		ObjectName: objectName,
		MimeType:   contentType,
		SizeBytes:  fh.Size,
		FileName:   fh.Filename,
		UploadedAt: now,
	}, nil
}
