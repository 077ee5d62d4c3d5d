package s3

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/flexprice/leasebill/internal/cache"
	"github.com/flexprice/leasebill/internal/config"
	ierr "github.com/flexprice/leasebill/internal/errors"
	"github.com/flexprice/leasebill/internal/logger"
)

const defaultPresignExpiry = 15 * time.Minute

// ProofLinkProvider turns a stored proof file reference into a short lived URL.
// The file bytes never pass through billing.
type ProofLinkProvider interface {
	GetLink(ctx context.Context, fileRef string) (string, error)
}

// Presigner is the part of s3.PresignClient used here
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type s3ProofLinkProvider struct {
	presigner Presigner
	bucket    string
	expiry    time.Duration
	cache     cache.Cache
	logger    *logger.Logger
}

// NewProofLinkProvider returns an S3 backed provider when S3 is enabled and a
// static one otherwise
func NewProofLinkProvider(cfg *config.Configuration, c cache.Cache, logger *logger.Logger) (ProofLinkProvider, error) {
	if !cfg.S3.Enabled {
		return NewStaticProofLinkProvider(""), nil
	}

	awsCfg, err := config.LoadAwsConfig(context.Background(), cfg.S3)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}
	presigner := s3.NewPresignClient(config.NewS3Client(awsCfg))
	return NewS3ProofLinkProvider(presigner, cfg.S3.ProofBucket, cfg.S3.PresignExpiry, c, logger), nil
}

// NewS3ProofLinkProvider presigns GET requests, caching each URL for part of its lifetime
func NewS3ProofLinkProvider(presigner Presigner, bucket string, expiry time.Duration, c cache.Cache, logger *logger.Logger) ProofLinkProvider {
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}
	return &s3ProofLinkProvider{
		presigner: presigner,
		bucket:    bucket,
		expiry:    expiry,
		cache:     c,
		logger:    logger,
	}
}

func (p *s3ProofLinkProvider) GetLink(ctx context.Context, fileRef string) (string, error) {
	if fileRef == "" {
		return "", ierr.NewError("proof file reference is empty").
			WithHint("The request has no proof attached").
			Mark(ierr.ErrNotFound)
	}

	key := cache.GenerateKey(cache.PrefixProofLink, p.bucket, fileRef)
	if v, ok := p.cache.Get(ctx, key); ok {
		if url, ok := v.(string); ok {
			return url, nil
		}
	}

	result, err := p.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(strings.TrimPrefix(fileRef, "/")),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("failed to get presigned url").
			WithMessagef("bucket:%s, key:%s", p.bucket, fileRef).
			Mark(ierr.ErrHTTPClient)
	}

	// expire the cached URL well before the signature does
	p.cache.Set(ctx, key, result.URL, p.expiry*3/4)
	return result.URL, nil
}

type staticProofLinkProvider struct {
	baseURL string
}

// NewStaticProofLinkProvider returns the reference joined to baseURL, used
// locally and in tests
func NewStaticProofLinkProvider(baseURL string) ProofLinkProvider {
	return &staticProofLinkProvider{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (p *staticProofLinkProvider) GetLink(_ context.Context, fileRef string) (string, error) {
	if fileRef == "" {
		return "", ierr.NewError("proof file reference is empty").
			WithHint("The request has no proof attached").
			Mark(ierr.ErrNotFound)
	}
	if p.baseURL == "" {
		return fileRef, nil
	}
	return p.baseURL + "/" + strings.TrimPrefix(fileRef, "/"), nil
}
