package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Sink stores named export files.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
}

// DirSink writes files into a local directory, creating it if needed.
type DirSink struct {
	Dir string
}

func (d DirSink) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.Dir, name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// s3Putter is the part of the S3 client S3Sink uses.
type s3Putter interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Sink uploads files to Bucket under Prefix.
type S3Sink struct {
	svc    s3Putter
	Bucket string
	Prefix string
}

// NewS3Sink creates a sink backed by an S3 client for sess.
func NewS3Sink(sess *session.Session, bucket, prefix string) *S3Sink {
	return &S3Sink{svc: s3.New(sess), Bucket: bucket, Prefix: prefix}
}

// NewSession opens an AWS session for region using the default
// credential chain.
func NewSession(region string) (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return sess, nil
}

// Patch S3's limited vocabulary of default content types
var contentTypes = map[string]string{
	".png":  "image/png",
	".json": "application/json",
	".csv":  "text/csv",
	".yaml": "application/yaml",
}

func contentType(name string) string {
	for ext, mime := range contentTypes {
		if strings.HasSuffix(name, ext) {
			return mime
		}
	}
	return "application/octet-stream"
}

func (s *S3Sink) Put(ctx context.Context, name string, data []byte) error {
	key := name
	if s.Prefix != "" {
		key = path.Join(s.Prefix, name)
	}

	_, err := s.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", s.Bucket, key, err)
	}
	return nil
}
