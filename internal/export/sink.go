// Package export stores participant sheets downloaded from the backend.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gravadigital/simradar/internal/config"
	"github.com/gravadigital/simradar/internal/logger"
)

// Sink stores a downloaded file and returns where it ended up.
// size is -1 when unknown.
type Sink interface {
	Store(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// SinkType names a Sink implementation in configuration
type SinkType string

const (
	// SinkTypeFile writes exports to EXPORT_DIR
	SinkTypeFile SinkType = "file"
	// SinkTypeMinio uploads exports to MINIO_BUCKET
	SinkTypeMinio SinkType = "minio"
)

// ErrInvalidName is returned for names that would escape the destination
var ErrInvalidName = errors.New("export: invalid file name")

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// FileSink writes exports into a local directory
type FileSink struct {
	Dir string
}

// NewFileSink returns a sink writing into dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Store implements Sink
func (s *FileSink) Store(ctx context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	dest := filepath.Join(s.Dir, name)
	tmp, err := os.CreateTemp(s.Dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("move export file: %w", err)
	}

	logger.Export().Info("Export stored", "path", dest, "bytes", n)
	return dest, nil
}

// ctxReader stops a copy once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ObjectPutter is the part of *minio.Client the sink needs
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioSink uploads exports to an S3 compatible bucket
type MinioSink struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewMinioSink wraps an existing client
func NewMinioSink(client ObjectPutter, bucket, prefix string) *MinioSink {
	return &MinioSink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ObjectName returns the key a file is uploaded under
func (s *MinioSink) ObjectName(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Store implements Sink
func (s *MinioSink) Store(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if size < 0 {
		size = -1
	}

	object := s.ObjectName(name)
	info, err := s.client.PutObject(ctx, s.bucket, object, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	logger.Export().Info("Export uploaded", "bucket", info.Bucket, "object", info.Key, "bytes", info.Size)
	return fmt.Sprintf("s3://%s/%s", s.bucket, object), nil
}

// FromConfig builds the sink selected by EXPORT_SINK
func FromConfig(cfg *config.Config) (Sink, error) {
	switch SinkType(cfg.Export.Sink) {
	case "", SinkTypeFile:
		return NewFileSink(cfg.Export.Dir), nil
	case SinkTypeMinio:
		client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return NewMinioSink(client, cfg.Minio.Bucket, cfg.Minio.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported export sink: %s", cfg.Export.Sink)
	}
}
