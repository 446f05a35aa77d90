package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gamerzord/latihan-magang-lms/config"
)

// ErrNotExist 对象不存在
var ErrNotExist = errors.New("文件不存在")

// Object 存储对象元信息（Walk 回调使用）
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Storage 文件存储抽象，key 为 "/" 分隔的相对路径
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 对不存在的 key 视为成功
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
	// Walk 遍历 prefix 下的所有对象，fn 返回错误时终止遍历
	Walk(ctx context.Context, prefix string, fn func(Object) error) error
}

// New 按配置创建存储驱动
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocal(cfg.Local.Root, cfg.Local.PublicURL)
	case "oss":
		return NewOSS(&cfg.OSS)
	case "b2":
		return NewB2(ctx, &cfg.B2)
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Driver)
	}
}
