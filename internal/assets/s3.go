package assets

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/Skotchmaster/videotube/internal/config"
)

type s3API interface {
	manager.UploadAPIClient
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads staged files to an S3-compatible bucket.
type S3Store struct {
	client   s3API
	uploader *manager.Uploader
	bucket   string
	baseURL  string
	prober   Prober
	now      func() time.Time
}

func NewS3Store(ctx context.Context, cfg config.ObjectStoreConfig, prober Prober) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 store: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
			o.BaseEndpoint = aws.String(ep)
		}
	})
	return newS3Store(client, cfg, prober), nil
}

func newS3Store(client s3API, cfg config.ObjectStoreConfig, prober Prober) *S3Store {
	return &S3Store{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = 5 * 1024 * 1024
			u.LeavePartsOnError = false
		}),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		prober:  prober,
		now:     time.Now,
	}
}

func (s *S3Store) Upload(ctx context.Context, localPath string) (Asset, error) {
	defer os.Remove(localPath)

	if localPath == "" {
		return Asset{}, fmt.Errorf("s3 store: nothing staged")
	}
	f, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("s3 store: open staged file: %w", err)
	}
	defer f.Close()

	var duration float64
	if s.prober != nil {
		if d, err := s.prober.Duration(ctx, localPath); err == nil {
			duration = d
		}
	}

	key := s.key(localPath)
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return Asset{}, fmt.Errorf("s3 store upload %s: %w", key, err)
	}
	return Asset{URL: s.urlFor(key), Duration: duration}, nil
}

func (s *S3Store) Delete(ctx context.Context, rawURL string) error {
	key, err := s.keyFromURL(rawURL)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 store delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) key(localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return path.Join("uploads", s.now().UTC().Format("2006/01/02"), uuid.NewString()+ext)
}

func (s *S3Store) urlFor(key string) string {
	if s.baseURL == "" {
		return key
	}
	return s.baseURL + "/" + key
}

// keyFromURL reverses urlFor; plain keys pass through.
func (s *S3Store) keyFromURL(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("s3 store: empty asset url")
	}
	if s.baseURL != "" && strings.HasPrefix(raw, s.baseURL+"/") {
		return strings.TrimPrefix(raw, s.baseURL+"/"), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("s3 store: bad asset url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host != "" {
		key = strings.TrimPrefix(key, s.bucket+"/")
	}
	if key == "" {
		return "", fmt.Errorf("s3 store: no key in %q", raw)
	}
	return key, nil
}
