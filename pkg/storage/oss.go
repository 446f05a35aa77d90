package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/gamerzord/latihan-magang-lms/config"
)

// OSS 阿里云对象存储
type OSS struct {
	bucket    *oss.Bucket
	publicURL string
}

// NewOSS 创建 OSS 存储
func NewOSS(cfg *config.OSSConfig) (*OSS, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取 OSS bucket 失败: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
		publicURL = fmt.Sprintf("https://%s.%s", cfg.Bucket, endpoint)
	}
	return &OSS{bucket: bucket, publicURL: publicURL}, nil
}

func (s *OSS) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
	}
	if size > 0 {
		opts = append(opts, oss.ContentLength(size))
	}
	return s.bucket.PutObject(key, r, opts...)
}

func (s *OSS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	body, err := s.bucket.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		if isOSSNotFound(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return body, nil
}

func (s *OSS) Delete(ctx context.Context, key string) error {
	err := s.bucket.DeleteObject(key, oss.WithContext(ctx))
	if err != nil && !isOSSNotFound(err) {
		return err
	}
	return nil
}

func (s *OSS) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.IsObjectExist(key, oss.WithContext(ctx))
}

func (s *OSS) URL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

func (s *OSS) Walk(ctx context.Context, prefix string, fn func(Object) error) error {
	marker := oss.Marker("")
	for {
		lor, err := s.bucket.ListObjects(oss.Prefix(prefix), marker, oss.MaxKeys(1000), oss.WithContext(ctx))
		if err != nil {
			return err
		}
		for _, obj := range lor.Objects {
			if obj.Key == "" || strings.HasSuffix(obj.Key, "/") {
				continue
			}
			if err := fn(Object{Key: obj.Key, Size: obj.Size, ModTime: obj.LastModified}); err != nil {
				return err
			}
		}
		if !lor.IsTruncated {
			return nil
		}
		marker = oss.Marker(lor.NextMarker)
	}
}

func isOSSNotFound(err error) bool {
	if e, ok := err.(oss.ServiceError); ok {
		return e.StatusCode == 404
	}
	return false
}
