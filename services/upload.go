package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/rs/zerolog/log"
)

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Upload is one file headed for object storage.
type Upload struct {
	// Kind groups objects under a prefix: poster, video or screenshot.
	Kind        string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

var uploadKinds = map[string]bool{"poster": true, "video": true, "screenshot": true}

// Uploader stores media and hands back the durable URL that goes into
// posterUrl, videoUrl or screenshots.
type Uploader struct {
	client        ObjectPutter
	bucket        string
	region        string
	publicBaseURL string
	now           func() time.Time
}

func NewUploader(client ObjectPutter, bucket, region, publicBaseURL string) *Uploader {
	return &Uploader{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// NewUploaderFromConfig builds an S3 uploader from S3_BUCKET, S3_REGION and
// S3_PUBLIC_BASE_URL. It returns nil when no bucket is configured.
func NewUploaderFromConfig(ctx context.Context, cfg map[string]string) (*Uploader, error) {
	bucket := config.GetString(cfg, "S3_BUCKET", "")
	if bucket == "" {
		return nil, nil
	}
	region := config.GetString(cfg, "S3_REGION", "eu-central-1")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errs.NewConfigError("S3", err)
	}
	client := s3.NewFromConfig(awsCfg)

	log.Info().Str("bucket", bucket).Str("region", region).Msg("Media uploads enabled")
	return NewUploader(client, bucket, region, config.GetString(cfg, "S3_PUBLIC_BASE_URL", "")), nil
}

// Put stores the file and returns its public URL.
func (u *Uploader) Put(ctx context.Context, upload Upload) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(upload.Kind))
	if !uploadKinds[kind] {
		return "", errs.NewInvalidFieldError("kind", "must be poster, video or screenshot")
	}
	if upload.Body == nil {
		return "", errs.NewMissingRequiredFieldsError([]string{"file"})
	}

	key := u.objectKey(kind, upload.Filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   upload.Body,
	}
	if upload.ContentType != "" {
		input.ContentType = aws.String(upload.ContentType)
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", errs.NewUploadError(key, err)
	}

	location := u.URL(key)
	log.Info().Str("key", key).Str("url", location).Msg("Uploaded media")
	return location, nil
}

// objectKey builds kind/yyyy/mm/<uuid><ext>. The original name only
// contributes its extension.
func (u *Uploader) objectKey(kind, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, `\`, "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	now := u.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s%s", kind, now.Year(), int(now.Month()), uuid.NewString(), ext)
}

// URL returns the durable address of a stored object.
func (u *Uploader) URL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, escaped)
}
