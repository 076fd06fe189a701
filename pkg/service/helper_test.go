package service

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"maxcdc/pkg/app"
	"maxcdc/pkg/chunker"
	"maxcdc/pkg/exporter"
	"maxcdc/pkg/index"
	"maxcdc/pkg/ingester"
	"maxcdc/pkg/meta"
	"maxcdc/pkg/storage/disk"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWindow = 32

// setupTestApp 是所有 Service 测试共享的基础设施初始化逻辑
func setupTestApp(t *testing.T) *app.App {
	t.Helper()
	tmpDir := t.TempDir()

	// 1. Store
	store, err := disk.NewAdapter(filepath.Join(tmpDir, "objects"))
	require.NoError(t, err)

	// 2. Index
	idx, err := index.NewIndex(filepath.Join(tmpDir, "index.json"))
	require.NoError(t, err)

	// 3. DB & Meta
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	metaDB := meta.NewWithConn(db)
	require.NoError(t, metaDB.AutoMigrate(meta.Models()...))
	t.Cleanup(func() { metaDB.Close() })

	// 4. Chunker
	c, err := chunker.NewChunker(testWindow)
	require.NoError(t, err)

	return &app.App{
		Chunker:  c,
		Store:    store,
		Index:    idx,
		Meta:     meta.NewRepository(metaDB),
		Ingester: ingester.NewIngester(store, c),
		Exporter: exporter.NewExporter(store),
		RepoPath: tmpDir,
	}
}

func randomBytes(size int, seed uint64) []byte {
	r := rand.New(rand.NewPCG(seed, seed+1))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(r.Uint32())
	}
	return data
}
