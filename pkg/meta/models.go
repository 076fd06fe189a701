package meta

import (
	"encoding/json"
	"time"

	"maxcdc/pkg/types"

	"gorm.io/datatypes"
)

// ManifestModel 是 core.Manifest 在关系型数据库中的投影
type ManifestModel struct {
	Hash       types.Hash `gorm:"primaryKey;type:char(64)"`
	Window     int        `gorm:"not null"`
	TotalSize  int64      `gorm:"not null"`
	ChunkCount int        `gorm:"not null"`

	// ChunkSizes 按顺序记录每个切块的大小，用于分析块大小分布
	ChunkSizes datatypes.JSON

	CreatedAt time.Time
}

func (ManifestModel) TableName() string {
	return "manifests"
}

// Sizes 解码 ChunkSizes
func (m *ManifestModel) Sizes() ([]int, error) {
	var sizes []int
	if len(m.ChunkSizes) == 0 {
		return sizes, nil
	}
	err := json.Unmarshal(m.ChunkSizes, &sizes)
	return sizes, err
}

// ChunkModel 记录每个唯一切块及其被 Manifest 引用的次数
type ChunkModel struct {
	Hash     types.Hash `gorm:"primaryKey;type:char(64)"`
	Size     int        `gorm:"not null"`
	RefCount int64      `gorm:"not null;default:0"`

	CreatedAt time.Time
}

func (ChunkModel) TableName() string {
	return "chunks"
}

// FileEntry 将路径映射到最近一次写入的 Manifest
type FileEntry struct {
	Path         string     `gorm:"primaryKey;type:varchar(1024)"`
	ManifestHash types.Hash `gorm:"index;type:char(64);not null"`
	Size         int64

	UpdatedAt time.Time
}

func (FileEntry) TableName() string {
	return "files"
}

// Models 返回需要迁移的所有表
func Models() []any {
	return []any{&ManifestModel{}, &ChunkModel{}, &FileEntry{}}
}
