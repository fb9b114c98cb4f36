package transport

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

const defaultS3Region = "us-east-1"

var _ ports.Transport = (*S3)(nil)

// ObjectGetter is the subset of the S3 client used by the transport.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 fetches objects from a bucket, optionally below a key prefix.
type S3 struct {
	client  ObjectGetter
	bucket  string
	prefix  string
	timeout time.Duration
}

// NewS3 creates an S3 transport using client.
func NewS3(client ObjectGetter, bucket, prefix string, timeout time.Duration) *S3 {
	return &S3{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		timeout: timeout,
	}
}

// NewS3FromURL parses s3://bucket/prefix?region=...&endpoint=... and builds an
// anonymous client. A custom endpoint switches to path-style addressing.
func NewS3FromURL(u *url.URL, timeout time.Duration) (*S3, error) {
	if u.Host == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedScheme, "s3 url has no bucket"), "url", u.String())
	}

	query := u.Query()
	region := query.Get("region")
	if region == "" {
		region = defaultS3Region
	}

	opts := s3.Options{
		Region:      region,
		Credentials: aws.AnonymousCredentials{},
	}
	if endpoint := query.Get("endpoint"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	return NewS3(s3.New(opts), u.Host, u.Path, timeout), nil
}

// Fetch downloads the object named by req.FileName into destDir.
func (t *S3) Fetch(ctx context.Context, req domain.FetchRequest, destDir string, progress ports.ProgressFunc) (int64, error) {
	tctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	key := path.Join(t.prefix, req.FileName)
	out, err := t.client.GetObject(tctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			err = zerr.With(zerr.Wrap(err, "object not found"), "key", key)
			return 0, errors.Join(domain.ErrTransferFailed, err)
		}
		return 0, classify(ctx, tctx, err)
	}
	defer func() { _ = out.Body.Close() }()

	total := req.Size
	if out.ContentLength != nil && *out.ContentLength > 0 {
		total = *out.ContentLength
	}

	n, err := download(tctx, out.Body, total, destDir, req.FileName, progress)
	return n, classify(ctx, tctx, err)
}
