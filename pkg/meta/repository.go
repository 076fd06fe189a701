package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"maxcdc/pkg/core"
	"maxcdc/pkg/index"
	"maxcdc/pkg/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrManifestNotFound = errors.New("manifest not found in metadata")
	ErrFileNotFound     = errors.New("file not found in metadata")
	ErrChunkNotFound    = errors.New("chunk not found in metadata")
)

// Repository 封装所有对 SQL 数据库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// -----------------------------------------------------------------------------
// 1. 写入
// -----------------------------------------------------------------------------

// IndexManifest 在一个事务内记录 Manifest、切块引用计数和路径映射。
// 同一个 Manifest 重复索引时只更新路径，引用计数不会重复累加。
func (r *Repository) IndexManifest(ctx context.Context, path string, m *core.Manifest) error {
	sizes := make([]int, len(m.Chunks))
	refs := make(map[types.Hash]int64, len(m.Chunks))
	chunkSize := make(map[types.Hash]int, len(m.Chunks))
	for i, c := range m.Chunks {
		sizes[i] = c.Size
		refs[c.Cid.Hash]++
		chunkSize[c.Cid.Hash] = c.Size
	}
	sizesJSON, err := json.Marshal(sizes)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk sizes: %w", err)
	}

	return r.db.GetConn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 幂等写入 Manifest
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoNothing: true,
		}).Create(&ManifestModel{
			Hash:       m.ID(),
			Window:     m.Window,
			TotalSize:  m.TotalSize,
			ChunkCount: len(m.Chunks),
			ChunkSizes: datatypes.JSON(sizesJSON),
		})
		if res.Error != nil {
			return fmt.Errorf("failed to index manifest: %w", res.Error)
		}

		// 2. 只有新的 Manifest 才累加切块引用
		if res.RowsAffected > 0 {
			for hash, n := range refs {
				err := tx.Clauses(clause.OnConflict{
					Columns: []clause.Column{{Name: "hash"}},
					DoUpdates: clause.Assignments(map[string]any{
						"ref_count": gorm.Expr("chunks.ref_count + ?", n),
					}),
				}).Create(&ChunkModel{
					Hash:     hash,
					Size:     chunkSize[hash],
					RefCount: n,
				}).Error
				if err != nil {
					return fmt.Errorf("failed to index chunk %s: %w", hash.Short(), err)
				}
			}
		}

		// 3. 路径 -> Manifest (后写覆盖)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"manifest_hash", "size", "updated_at"}),
		}).Create(&FileEntry{
			Path:         index.CleanPath(path),
			ManifestHash: m.ID(),
			Size:         m.TotalSize,
			UpdatedAt:    time.Now(),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to index file %s: %w", path, err)
		}
		return nil
	})
}

// RemoveFile 删除路径映射；Manifest 和切块记录保留，其他路径可能仍在引用
func (r *Repository) RemoveFile(ctx context.Context, path string) error {
	res := r.db.GetConn().WithContext(ctx).
		Where("path = ?", index.CleanPath(path)).
		Delete(&FileEntry{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove file %s: %w", path, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFileNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// 2. 查询
// -----------------------------------------------------------------------------

func (r *Repository) GetManifest(ctx context.Context, hash types.Hash) (*ManifestModel, error) {
	var m ManifestModel
	err := r.db.GetConn().WithContext(ctx).
		Where("hash = ?", hash).
		First(&m).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrManifestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) GetFile(ctx context.Context, path string) (*FileEntry, error) {
	var f FileEntry
	err := r.db.GetConn().WithContext(ctx).
		Where("path = ?", index.CleanPath(path)).
		First(&f).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFiles 按路径排序返回文件；limit <= 0 表示不限制
func (r *Repository) ListFiles(ctx context.Context, limit int) ([]FileEntry, error) {
	var files []FileEntry
	q := r.db.GetConn().WithContext(ctx).Order("path ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&files).Error
	return files, err
}

func (r *Repository) GetChunk(ctx context.Context, hash types.Hash) (*ChunkModel, error) {
	var c ChunkModel
	err := r.db.GetConn().WithContext(ctx).
		Where("hash = ?", hash).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChunkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Stats 汇总去重效果
type Stats struct {
	Files        int64
	Manifests    int64
	Chunks       int64
	LogicalBytes int64 // 所有 Manifest 的原始大小之和
	UniqueBytes  int64 // 唯一切块的大小之和
}

// DedupRatio 返回 逻辑字节 / 实际存储字节；没有数据时为 1
func (s Stats) DedupRatio() float64 {
	if s.UniqueBytes == 0 {
		return 1
	}
	return float64(s.LogicalBytes) / float64(s.UniqueBytes)
}

func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := r.db.GetConn().WithContext(ctx)

	if err := db.Model(&FileEntry{}).Count(&s.Files).Error; err != nil {
		return s, err
	}
	if err := db.Model(&ManifestModel{}).Count(&s.Manifests).Error; err != nil {
		return s, err
	}
	if err := db.Model(&ChunkModel{}).Count(&s.Chunks).Error; err != nil {
		return s, err
	}
	if err := db.Model(&ManifestModel{}).Select("CAST(COALESCE(SUM(total_size), 0) AS BIGINT)").Scan(&s.LogicalBytes).Error; err != nil {
		return s, err
	}
	if err := db.Model(&ChunkModel{}).Select("CAST(COALESCE(SUM(size), 0) AS BIGINT)").Scan(&s.UniqueBytes).Error; err != nil {
		return s, err
	}
	return s, nil
}
