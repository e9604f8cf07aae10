package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/ptiporki19/pxv-pay-app-sub003/internal/config"
	"github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/provider"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3ProofStorage keeps proof files in a private bucket
type S3ProofStorage struct {
	client     objectAPI
	presigner  presignAPI
	bucket     string
	presignTTL time.Duration
	logger     *zap.Logger
}

// NewS3ProofStorage builds the client from the storage section. Static keys are
// used when set; otherwise the default AWS credential chain applies.
func NewS3ProofStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3ProofStorage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info("S3 proof storage initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("region", cfg.Region),
		zap.Bool("custom_endpoint", cfg.Endpoint != ""))

	return newS3ProofStorage(client, s3.NewPresignClient(client), cfg.Bucket, cfg.PresignTTL, logger), nil
}

func newS3ProofStorage(client objectAPI, presigner presignAPI, bucket string, ttl time.Duration, logger *zap.Logger) *S3ProofStorage {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3ProofStorage{
		client:     client,
		presigner:  presigner,
		bucket:     bucket,
		presignTTL: ttl,
		logger:     logger,
	}
}

// ObjectKey is proofs/{merchant}/{payment}{ext}.
func ObjectKey(req *provider.ProofUpload) string {
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("proofs/%s/%s%s", req.MerchantID, req.PaymentID, ext)
}

func (s *S3ProofStorage) Upload(ctx context.Context, req *provider.ProofUpload) (*provider.StoredProof, error) {
	key := ObjectKey(req)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        req.Body,
		ContentType: aws.String(req.ContentType),
		ACL:         s3types.ObjectCannedACLPrivate,
		Metadata: map[string]string{
			"payment-id":  req.PaymentID.String(),
			"merchant-id": req.MerchantID.String(),
		},
	}
	if req.Size > 0 {
		input.ContentLength = aws.Int64(req.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("Failed to upload proof",
			zap.String("key", key),
			zap.String("payment_id", req.PaymentID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to upload proof to s3: %w", err)
	}

	s.logger.Info("Proof uploaded",
		zap.String("key", key),
		zap.String("payment_id", req.PaymentID.String()),
		zap.Int64("size", req.Size))

	return &provider.StoredProof{
		Key: key,
		URL: fmt.Sprintf("s3://%s/%s", s.bucket, key),
	}, nil
}

func (s *S3ProofStorage) PresignGet(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("empty object key")
	}
	out, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return out.URL, nil
}

func (s *S3ProofStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete proof from s3: %w", err)
	}
	s.logger.Info("Proof deleted", zap.String("key", key))
	return nil
}
