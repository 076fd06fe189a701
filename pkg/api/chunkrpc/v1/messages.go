package chunkrpc

import (
	"errors"
	"fmt"

	"maxcdc/pkg/types"
)

// MaxMessageSize 单条消息上限，供服务端和客户端设置 MaxRecv/SendMsgSize
const MaxMessageSize = 1 << 30

var ErrInvalidRequest = errors.New("invalid request")

// message 标记可以被 Codec 处理的类型
type message interface {
	isMessage()
}

// Span 描述一个切块在原始 buffer 中的位置
type Span struct {
	Offset int64  `cbor:"offset"`
	Length int64  `cbor:"length"`
	Hash   string `cbor:"hash,omitempty"`
}

// -----------------------------------------------------------------------------
// Chunk: 只切分，不存储
// -----------------------------------------------------------------------------

type ChunkRequest struct {
	Data []byte `cbor:"data"`
	// Window 为 0 时使用服务端配置
	Window int `cbor:"window,omitempty"`
	// WithHashes 为 true 时返回每个切块的 SHA-256
	WithHashes bool `cbor:"with_hashes,omitempty"`
}

func (r *ChunkRequest) Validate() error {
	if r.Window < 0 {
		return fmt.Errorf("%w: window must not be negative, got %d", ErrInvalidRequest, r.Window)
	}
	return nil
}

type ChunkResponse struct {
	Window int    `cbor:"window"`
	Spans  []Span `cbor:"spans"`
}

// -----------------------------------------------------------------------------
// Ingest / Upload: 切分并存储
// -----------------------------------------------------------------------------

type IngestRequest struct {
	Path string `cbor:"path"`
	Data []byte `cbor:"data"`
}

func (r *IngestRequest) Validate() error {
	return validatePath(r.Path)
}

type IngestResponse struct {
	ManifestHash    string `cbor:"manifest_hash"`
	TotalSize       int64  `cbor:"total_size"`
	Chunks          int    `cbor:"chunks"`
	NewChunks       int    `cbor:"new_chunks"`
	DuplicateChunks int    `cbor:"duplicate_chunks"`
	NewBytes        int64  `cbor:"new_bytes"`
}

// UploadRequest 是客户端流的一帧：第一帧必须带 Path，之后的帧只带 Data
type UploadRequest struct {
	Path string `cbor:"path,omitempty"`
	Data []byte `cbor:"data,omitempty"`
}

// -----------------------------------------------------------------------------
// Stat / Download: 按 Hash 或前缀读取
// -----------------------------------------------------------------------------

type StatRequest struct {
	Hash string `cbor:"hash"`
}

func (r *StatRequest) Validate() error {
	return validateHash(r.Hash)
}

type StatResponse struct {
	Hash      string `cbor:"hash"`
	Window    int    `cbor:"window"`
	TotalSize int64  `cbor:"total_size"`
	Chunks    []Span `cbor:"chunks"`
}

type DownloadRequest struct {
	Hash string `cbor:"hash"`
}

func (r *DownloadRequest) Validate() error {
	return validateHash(r.Hash)
}

type DownloadResponse struct {
	Data []byte `cbor:"data"`
}

func (*Span) isMessage()             {}
func (*ChunkRequest) isMessage()     {}
func (*ChunkResponse) isMessage()    {}
func (*IngestRequest) isMessage()    {}
func (*IngestResponse) isMessage()   {}
func (*UploadRequest) isMessage()    {}
func (*StatRequest) isMessage()      {}
func (*StatResponse) isMessage()     {}
func (*DownloadRequest) isMessage()  {}
func (*DownloadResponse) isMessage() {}

func validatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidRequest)
	}
	if len(p) > 1024 {
		return fmt.Errorf("%w: path longer than 1024 bytes", ErrInvalidRequest)
	}
	return nil
}

// validateHash 接受完整 Hash 或不短于 4 位的前缀
func validateHash(h string) error {
	if !types.HashPrefix(h).IsValid() {
		return fmt.Errorf("%w: hash must be %d to 64 lowercase hex chars, got %q", ErrInvalidRequest, types.MinPrefixLen, h)
	}
	return nil
}
