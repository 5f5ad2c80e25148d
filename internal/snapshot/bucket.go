package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// BucketConfig configures an S3-compatible bucket (AWS S3, Cloudflare R2,
// MinIO). Endpoint may be empty for AWS.
type BucketConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	PublicBaseURL   string
}

// Bucket publishes documents as JSON objects so a CDN can serve them
// without touching the API. Object keys are {prefix}{path}.json.
type Bucket struct {
	client        *s3.Client
	bucket        string
	prefix        string
	publicBaseURL string
}

// NewBucket builds an S3 client from static credentials.
func NewBucket(ctx context.Context, cfg BucketConfig) (*Bucket, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("invalid bucket configuration: bucket and credentials are required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Bucket{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

func (b *Bucket) key(seasonID string, kind Kind) string {
	return b.prefix + Path(seasonID, kind) + ".json"
}

func (b *Bucket) Put(ctx context.Context, doc Document) error {
	key := b.key(doc.SeasonID, doc.Kind)
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(doc.Payload),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("public, max-age=60"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (b *Bucket) Get(ctx context.Context, seasonID string, kind Kind) (Document, error) {
	key := b.key(seasonID, kind)
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Document{}, fmt.Errorf("read object %s: %w", key, err)
	}
	doc := Document{SeasonID: seasonID, Kind: kind, Payload: data}
	if out.LastModified != nil {
		doc.UpdatedAt = out.LastModified.UTC()
	}
	return doc, nil
}

// PublicURL returns the CDN URL for a document, or "" when no public base
// URL is configured.
func (b *Bucket) PublicURL(seasonID string, kind Kind) string {
	if b.publicBaseURL == "" {
		return ""
	}
	base, err := url.Parse(strings.TrimSuffix(b.publicBaseURL, "/") + "/")
	if err != nil {
		return ""
	}
	ref, err := url.Parse(b.key(seasonID, kind))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
