package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"onlyu-media/internal/shared/storage/object"
)

type s3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options configures the S3 client. Endpoint and UsePathStyle allow
// S3-compatible services.
type Options struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// Store implements object.Store using Amazon S3.
type Store struct {
	client s3API
}

// New creates a new S3-backed object store.
func New(ctx context.Context, opts Options) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})
	return &Store{client: client}, nil
}

func newWithClient(client s3API) *Store {
	return &Store{client: client}
}

// ListBuckets returns every bucket name visible to the credential.
func (s *Store) ListBuckets(ctx context.Context) ([]string, error) {
	var names []string
	input := &s3.ListBucketsInput{}
	for {
		out, err := s.client.ListBuckets(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("s3 list buckets: %w", err)
		}
		for _, b := range out.Buckets {
			if name := aws.ToString(b.Name); name != "" {
				names = append(names, name)
			}
		}
		if aws.ToString(out.ContinuationToken) == "" {
			return names, nil
		}
		input = &s3.ListBucketsInput{ContinuationToken: out.ContinuationToken}
	}
}

// Open downloads a stored object for reading.
func (s *Store) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", bucket, key, mapErr(err))
	}
	return out.Body, nil
}

// Put uploads the reader contents to bucket/key.
func (s *Store) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	input := &s3.PutObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		Body:                 r,
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", bucket, key, err)
	}
	return nil
}

// Stat issues a HeadObject so existence checks never transfer the body.
func (s *Store) Stat(ctx context.Context, bucket, key string) (object.Info, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return object.Info{}, fmt.Errorf("s3 head object bucket=%s key=%s: %w", bucket, key, mapErr(err))
	}
	return object.Info{
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		Metadata:    out.Metadata,
	}, nil
}

// SetMetadata rewrites the object onto itself with replaced user metadata.
func (s *Store) SetMetadata(ctx context.Context, bucket, key string, meta map[string]string) error {
	info, err := s.Stat(ctx, bucket, key)
	if err != nil {
		return err
	}
	input := &s3.CopyObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		CopySource:           aws.String(copySource(bucket, key)),
		Metadata:             meta,
		MetadataDirective:    s3types.MetadataDirectiveReplace,
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if info.ContentType != "" {
		input.ContentType = aws.String(info.ContentType)
	}
	if _, err := s.client.CopyObject(ctx, input); err != nil {
		return fmt.Errorf("s3 copy object bucket=%s key=%s: %w", bucket, key, mapErr(err))
	}
	return nil
}

// Delete removes bucket/key.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", bucket, key, mapErr(err))
	}
	return nil
}

func copySource(bucket, key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return bucket + "/" + strings.Join(parts, "/")
}

func mapErr(err error) error {
	var noSuchKey *s3types.NoSuchKey
	var notFound *s3types.NotFound
	var noSuchBucket *s3types.NoSuchBucket
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return fmt.Errorf("%w: %v", object.ErrNotFound, err)
	}
	return err
}

var (
	_ object.Store  = (*Store)(nil)
	_ object.Stater = (*Store)(nil)
)
