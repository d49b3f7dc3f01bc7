package s3list

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config selects the objects to list and, for NewClient, how to reach S3.
type Config struct {
	Bucket         string `env:"S3_BUCKET,required"`
	Prefix         string `env:"S3_PREFIX"`
	PageSize       int32  `env:"S3_PAGE_SIZE" envDefault:"1000"`
	Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// Client is the subset of the S3 API the source needs. *s3.Client implements it.
type Client interface {
	ListObjectsV2(ctx context.Context, params *s3aws.ListObjectsV2Input, optFns ...func(*s3aws.Options)) (*s3aws.ListObjectsV2Output, error)
}

// Paginator walks ListObjectsV2 pages.
type Paginator interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*s3aws.Options)) (*s3aws.ListObjectsV2Output, error)
}

// PaginatorFactory builds the paginator used by a Source.
type PaginatorFactory func(client Client, params *s3aws.ListObjectsV2Input) Paginator

// Object is a listed S3 object.
type Object struct {
	Bucket       string
	Key          string
	Size         int64
	ETag         string
	StorageClass string
	LastModified time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithPaginatorFactory replaces the SDK paginator.
func WithPaginatorFactory(f PaginatorFactory) Option {
	return func(s *Source) {
		if f != nil {
			s.factory = f
		}
	}
}

// Source lists a bucket prefix once, one object per Next, then reports io.EOF.
// Pages are requested only as consumers drain the previous one.
type Source struct {
	client    Client
	bucket    string
	params    *s3aws.ListObjectsV2Input
	factory   PaginatorFactory
	paginator Paginator
	pending   []types.Object
}

// New creates a listing source over client.
func New(client Client, cfg Config, opts ...Option) (*Source, error) {
	if client == nil || cfg.Bucket == "" {
		return nil, ErrInvalidConfig
	}

	params := &s3aws.ListObjectsV2Input{Bucket: aws.String(cfg.Bucket)}
	if cfg.Prefix != "" {
		params.Prefix = aws.String(cfg.Prefix)
	}
	if cfg.PageSize > 0 {
		params.MaxKeys = aws.Int32(cfg.PageSize)
	}

	s := &Source{
		client: client,
		bucket: cfg.Bucket,
		params: params,
		factory: func(c Client, p *s3aws.ListObjectsV2Input) Paginator {
			return s3aws.NewListObjectsV2Paginator(c, p)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewClient builds an S3 client from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg Config, optFns ...func(*config.LoadOptions) error) (*s3aws.Client, error) {
	if cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	loadOpts = append(loadOpts, optFns...)

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3aws.NewFromConfig(awsCfg, func(o *s3aws.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// Next returns the next listed object.
func (s *Source) Next(ctx context.Context) (Object, error) {
	if s.paginator == nil {
		s.paginator = s.factory(s.client, s.params)
	}
	for len(s.pending) == 0 {
		if !s.paginator.HasMorePages() {
			return Object{}, io.EOF
		}
		page, err := s.paginator.NextPage(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Object{}, ctxErr
			}
			return Object{}, classifyError(err)
		}
		s.pending = page.Contents
	}

	obj := s.pending[0]
	s.pending = s.pending[1:]
	return Object{
		Bucket:       s.bucket,
		Key:          aws.ToString(obj.Key),
		Size:         aws.ToInt64(obj.Size),
		ETag:         aws.ToString(obj.ETag),
		StorageClass: string(obj.StorageClass),
		LastModified: aws.ToTime(obj.LastModified),
	}, nil
}
