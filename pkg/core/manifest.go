package core

import (
	"errors"
	"fmt"

	"maxcdc/pkg/types"
)

var ErrNotManifest = errors.New("object is not a manifest")

// ChunkLink 描述了 Manifest 对一个 Chunk 的引用
type ChunkLink struct {
	Cid    Link  `cbor:"c"`
	Offset int64 `cbor:"o"` // 在原始 buffer 中的起始位置
	Size   int   `cbor:"s"`
}

// End 返回该块在原始 buffer 中的结束位置 (不包含)
func (l ChunkLink) End() int64 { return l.Offset + int64(l.Size) }

// Manifest 记录了一个 buffer 被切分后的完整、有序的切块列表
// 按顺序拼接所有 Chunk 就能还原原始数据
type Manifest struct {
	hash     types.Hash
	rawBytes []byte

	TypeVal   ObjectType  `cbor:"t"`  // 必须是 "manifest"
	Window    int         `cbor:"w"`  // 切分时使用的窗口
	TotalSize int64       `cbor:"ts"` // 原始数据大小
	Chunks    []ChunkLink `cbor:"cs"`
}

// NewManifest 创建并密封一个 Manifest (计算 Hash 和序列化数据)
func NewManifest(window int, totalSize int64, chunks []ChunkLink) (*Manifest, error) {
	m := &Manifest{
		TypeVal:   TypeManifest,
		Window:    window,
		TotalSize: totalSize,
		Chunks:    chunks,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	h, b, err := CalculateHash(m)
	if err != nil {
		return nil, err
	}
	m.hash = h
	m.rawBytes = b
	return m, nil
}

// DecodeManifest 从存储中的字节还原 Manifest
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := DecodeObject(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotManifest, err)
	}
	if m.TypeVal != TypeManifest {
		return nil, fmt.Errorf("%w: got type %q", ErrNotManifest, m.TypeVal)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	// 存储里的数据就是规范编码，直接对原始字节求 Hash
	m.hash = CalculateBlobHash(data)
	m.rawBytes = data
	return &m, nil
}

// Validate 检查切块是否构成原始数据的完整划分：
// 从 0 开始、首尾相接、总长等于 TotalSize，除最后一块外都不短于 window+1
func (m *Manifest) Validate() error {
	if m.Window < 1 {
		return fmt.Errorf("invalid manifest: window %d", m.Window)
	}
	if len(m.Chunks) == 0 {
		return fmt.Errorf("invalid manifest: no chunks")
	}

	var offset int64
	for i, c := range m.Chunks {
		if c.Offset != offset {
			return fmt.Errorf("invalid manifest: chunk %d starts at %d, want %d", i, c.Offset, offset)
		}
		if c.Size < 0 {
			return fmt.Errorf("invalid manifest: chunk %d has negative size", i)
		}
		if i < len(m.Chunks)-1 && c.Size < m.Window+1 {
			return fmt.Errorf("invalid manifest: interior chunk %d is %d bytes, window %d", i, c.Size, m.Window)
		}
		offset = c.End()
	}
	if offset != m.TotalSize {
		return fmt.Errorf("invalid manifest: chunks cover %d bytes, total size %d", offset, m.TotalSize)
	}
	return nil
}

func (m *Manifest) Type() ObjectType { return TypeManifest }
func (m *Manifest) ID() types.Hash   { return m.hash }
func (m *Manifest) Bytes() []byte    { return m.rawBytes }
func (m *Manifest) Size() int64      { return m.TotalSize }

// ManifestBuilder 按顺序收集 Chunk，自动计算 Offset
type ManifestBuilder struct {
	window int
	offset int64
	chunks []ChunkLink
}

func NewManifestBuilder(window int) *ManifestBuilder {
	return &ManifestBuilder{window: window}
}

// Add 追加下一个 Chunk，必须按原始数据中的顺序调用
func (b *ManifestBuilder) Add(c *Chunk) {
	b.chunks = append(b.chunks, ChunkLink{
		Cid:    NewLink(c.ID()),
		Offset: b.offset,
		Size:   c.Size(),
	})
	b.offset += int64(c.Size())
}

func (b *ManifestBuilder) Len() int { return len(b.chunks) }

func (b *ManifestBuilder) Build() (*Manifest, error) {
	return NewManifest(b.window, b.offset, b.chunks)
}
