package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/config"
	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

// S3Service stores game media in S3 using AWS Signature V4 and records each
// object in the media table. It implements MediaUploader.
type S3Service struct {
	bucket      string
	region      string
	endpoint    string
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	media       MediaRecorder
	httpClient  *http.Client
	now         func() time.Time
}

// NewS3Service creates a new S3 service. Explicit keys in cfg take
// precedence; otherwise credentials come from the default AWS chain
// (environment, shared config, instance role).
func NewS3Service(ctx context.Context, cfg *config.S3Config, media MediaRecorder) (*S3Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("S3 config is nil")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &S3Service{
		bucket:      cfg.Bucket,
		region:      cfg.Region,
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		credentials: awsCfg.Credentials,
		signer:      v4.NewSigner(),
		media:       media,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		now:         time.Now,
	}, nil
}

// Upload puts the image under games/<id>/<field>/ and records it.
func (s *S3Service) Upload(ctx context.Context, up models.MediaUpload) error {
	key := fmt.Sprintf("games/%d/%s/%s-%s", up.RefID, up.Field, uuid.New().String()[:8], up.Filename)
	contentType := up.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	url, err := s.uploadFile(ctx, key, up.Data, contentType)
	if err != nil {
		return &utils.StoreError{Op: "upload", Kind: string(up.Field), Input: up.Filename, Err: err}
	}

	m := &models.Media{
		GameID:   up.RefID,
		Field:    up.Field,
		Filename: up.Filename,
		URL:      url,
		Size:     len(up.Data),
	}
	if err := s.media.Create(ctx, m); err != nil {
		return &utils.StoreError{Op: "create", Kind: "media", Input: key, Err: err}
	}
	return nil
}

// uploadFile PUTs a signed object to S3.
func (s *S3Service) uploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	creds, err := s.credentials.Retrieve(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.GetObjectURL(key), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	payloadHash := sha256Hex(data)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)
	if err := s.signer.SignHTTP(ctx, creds, req, payloadHash, "s3", s.region, s.now().UTC()); err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error().
			Str("key", key).
			Int("status", resp.StatusCode).
			Str("response", string(body)).
			Msg("S3 upload failed")
		return "", fmt.Errorf("S3 upload failed: status %d", resp.StatusCode)
	}

	log.Info().Str("key", key).Int("size", len(data)).Msg("Uploaded media to S3")
	return s.GetObjectURL(key), nil
}

// GetObjectURL returns the URL for an S3 object. A custom endpoint (MinIO,
// localstack) is addressed path-style.
func (s *S3Service) GetObjectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// sha256Hex computes SHA256 hash and returns hex string
func sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
