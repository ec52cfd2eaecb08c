package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectGetter is the subset of the S3 client used to fetch objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newS3Client creates an S3 client for cfg.
func newS3Client(cfg S3Config) *s3.Client {
	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return s3.New(s3.Options{}, opts...)
}

// parseS3Location splits s3://bucket/key.
func parseS3Location(u *url.URL) (bucket, key string, err error) {
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s: expected s3://bucket/key", ErrInvalidURL, u.Redacted())
	}
	return bucket, key, nil
}

// fetchS3 downloads an object.
func (f *Fetcher) fetchS3(ctx context.Context, u *url.URL) (*File, error) {
	if f.s3 == nil {
		return nil, fmt.Errorf("%w: s3 is not configured", ErrUnsupportedScheme)
	}

	bucket, key, err := parseS3Location(u)
	if err != nil {
		return nil, err
	}

	output, err := f.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrDownloadFailed)
	}
	defer output.Body.Close()

	if output.ContentLength != nil && *output.ContentLength > f.cfg.MaxSize {
		return nil, ErrFileTooLarge
	}

	data, err := f.readLimited(output.Body)
	if err != nil {
		return nil, err
	}

	return newFile(key, aws.ToString(output.ContentType), data), nil
}

// readLimited reads r fully, failing once it exceeds the configured maximum.
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.cfg.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if int64(len(data)) > f.cfg.MaxSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}
