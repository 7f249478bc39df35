package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// BucketConfig locates a front-end build published to MinIO/S3.
type BucketConfig struct {
	Endpoint  string // "minio:9000" or "https://s3.example.com"
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string // optional key prefix, e.g. "dist"
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// NewBucketFS connects to the bucket and exposes it as a read-only fs.FS.
func NewBucketFS(ctx context.Context, cfg BucketConfig) (fs.FS, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	// Sanity check: bucket must exist.
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("minio bucket does not exist: %s", cfg.Bucket)
	}

	return &bucketFS{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

// bucketFS maps fs paths to object keys under prefix. Directories are not
// listed; every name is treated as an object key.
type bucketFS struct {
	client *minio.Client
	bucket string
	prefix string
}

func (b *bucketFS) key(name string) string {
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

func (b *bucketFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	// The object reads lazily with this context, so it must outlive Open.
	obj, err := b.client.GetObject(context.Background(), b.bucket, b.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			err = fs.ErrNotExist
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &bucketFile{Object: obj, info: objectFileInfo{obj: info}}, nil
}

// bucketFile is a seekable object, which http.ServeFileFS needs for ranges.
type bucketFile struct {
	*minio.Object
	info objectFileInfo
}

func (f *bucketFile) Stat() (fs.FileInfo, error) { return f.info, nil }

type objectFileInfo struct {
	obj minio.ObjectInfo
}

func (i objectFileInfo) Name() string       { return path.Base(i.obj.Key) }
func (i objectFileInfo) Size() int64        { return i.obj.Size }
func (i objectFileInfo) Mode() fs.FileMode  { return 0o444 }
func (i objectFileInfo) ModTime() time.Time { return i.obj.LastModified }
func (i objectFileInfo) IsDir() bool        { return false }
func (i objectFileInfo) Sys() any           { return nil }
