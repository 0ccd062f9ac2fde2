// Package storage opens import files from the local disk or from S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ignite/massmail/internal/domain"
)

const s3Scheme = "s3://"

// Opener resolves an import reference to a readable stream. References of
// the form s3://bucket/key are fetched from S3; anything else is a local path.
type Opener struct {
	s3 S3API
}

// NewOpener creates an opener. client may be nil, in which case S3
// references are rejected.
func NewOpener(client S3API) *Opener {
	return &Opener{s3: client}
}

// Open returns the content behind ref. The caller closes it.
func (o *Opener) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !strings.HasPrefix(ref, s3Scheme) {
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ref, err)
		}
		return f, nil
	}

	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return nil, err
	}
	if o.s3 == nil {
		return nil, fmt.Errorf("%w: S3 is not configured", domain.ErrUnavailable)
	}
	out, err := o.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// ParseS3Ref splits s3://bucket/key.
func ParseS3Ref(ref string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(ref, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: expected s3://bucket/key, got %q", domain.ErrInvalid, ref)
	}
	return bucket, key, nil
}
