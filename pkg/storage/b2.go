package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kurin/blazer/b2"

	"github.com/gamerzord/latihan-magang-lms/config"
)

// B2 Backblaze B2 存储
type B2 struct {
	bucket *b2.Bucket
}

// NewB2 创建 B2 存储
func NewB2(ctx context.Context, cfg *config.B2Config) (*B2, error) {
	client, err := b2.NewClient(ctx, cfg.AccountID, cfg.AppKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create b2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &B2{bucket: bucket}, nil
}

func (s *B2) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx, b2.WithAttrsOption(&b2.Attrs{ContentType: contentType}))

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

func (s *B2) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.bucket.Object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return obj.NewReader(ctx), nil
}

func (s *B2) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil && !b2.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *B2) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.bucket.Object(key).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if b2.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *B2) URL(key string) string {
	return s.bucket.Object(key).URL()
}

func (s *B2) Walk(ctx context.Context, prefix string, fn func(Object) error) error {
	iter := s.bucket.List(ctx, b2.ListPrefix(prefix))
	for iter.Next() {
		obj := iter.Object()
		attrs, err := obj.Attrs(ctx)
		if err != nil {
			return err
		}
		if err := fn(Object{Key: obj.Name(), Size: attrs.Size, ModTime: attrs.UploadTimestamp}); err != nil {
			return err
		}
	}
	return iter.Err()
}
