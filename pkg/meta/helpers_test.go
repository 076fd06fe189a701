package meta

import (
	"context"
	"fmt"
	"testing"

	"maxcdc/pkg/core"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepo 构建隔离的测试环境 (每个测试一个内存库)
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	metaDB := NewWithConn(db)
	require.NoError(t, metaDB.AutoMigrate(Models()...))
	t.Cleanup(func() { metaDB.Close() })

	return NewRepository(metaDB)
}

// mustManifest 按给定内容构建 Manifest，失败直接终止测试
func mustManifest(t *testing.T, window int, parts ...string) *core.Manifest {
	t.Helper()
	b := core.NewManifestBuilder(window)
	for _, p := range parts {
		b.Add(core.NewChunk([]byte(p)))
	}
	m, err := b.Build()
	require.NoError(t, err)
	return m
}

// mustIndex 强制索引 Manifest，失败则终止
func mustIndex(t *testing.T, repo *Repository, path string, m *core.Manifest, msgAndArgs ...any) {
	t.Helper()
	require.NoError(t, repo.IndexManifest(context.Background(), path, m), msgAndArgs...)
}
