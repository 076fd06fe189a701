package storage

import (
	"context"
	"errors"
	"io"

	"maxcdc/pkg/core"
	"maxcdc/pkg/types"
)

var (
	ErrNotFound       = errors.New("object not found")
	ErrAmbiguousHash  = errors.New("ambiguous hash prefix")
	ErrPrefixTooShort = errors.New("hash prefix too short")
)

// Store defines the interface for a content-addressed storage backend.
// Implementations can be local disk, object storage, or a caching decorator.
type Store interface {
	// Put 将一个对象持久化；对象已存在时必须是幂等的
	Put(ctx context.Context, obj core.Object) error

	// Get 根据 Hash 读取原始数据
	// 返回 io.ReadCloser 而不是 []byte，调用方负责 Close
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在 (用于去重逻辑)
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 将短哈希扩展为完整哈希
	// 0 个匹配返回 ErrNotFound，多于 1 个返回 ErrAmbiguousHash
	ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error)
}

// ReadAll 读取完整对象并关闭 reader
func ReadAll(ctx context.Context, s Store, hash types.Hash) ([]byte, error) {
	rc, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
