package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"maxcdc/pkg/chunker"
	"maxcdc/pkg/storage/disk"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStore_Disk(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	root := t.TempDir()
	viper.Set("storage.type", "disk")
	viper.Set("storage.path", filepath.Join(root, "objects"))

	store, err := initStore(context.Background(), root)
	require.NoError(t, err)
	assert.IsType(t, &disk.Adapter{}, store)
}

func TestInitStore_S3_MissingBucket(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "s3")

	store, err := initStore(context.Background(), ".")
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "bucket is required")
}

func TestInitStore_UnknownType(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("storage.type", "ftp")

	store, err := initStore(context.Background(), ".")
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "unsupported storage type")
}

func TestNewApp_InvalidWindow(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("storage.path", filepath.Join(t.TempDir(), "objects"))
	viper.Set("chunker.window", 0)

	_, err := NewApp(context.Background(), nil)
	assert.ErrorIs(t, err, chunker.ErrInvalidWindow)
}

func TestNewApp_EndToEnd(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	root := t.TempDir()
	viper.Set("storage.path", filepath.Join(root, "objects"))
	viper.Set("chunker.window", 16)
	viper.Set("ingest.concurrency", 2)
	viper.Set("database.driver", "sqlite")
	viper.Set("database.dsn", filepath.Join(root, "meta.db"))

	ctx := context.Background()
	a, err := NewApp(ctx, prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Meta)
	require.NotNil(t, a.Metrics)
	assert.Equal(t, root, a.RepoPath)
	assert.Equal(t, 16, a.Chunker.Window())

	data := bytes.Repeat([]byte("maxcdc end to end "), 64)
	res, err := a.Ingester.IngestBytes(ctx, data)
	require.NoError(t, err)
	require.NoError(t, a.Meta.IndexManifest(ctx, "e2e.txt", res.Manifest))
	a.Index.Add("e2e.txt", res.Manifest)
	require.NoError(t, a.Index.Save())

	var out bytes.Buffer
	_, err = a.Exporter.Restore(ctx, res.Manifest.ID(), &out)
	require.NoError(t, err)
	assert.Equal(t, data, out.Bytes())

	stats, err := a.Meta.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Files)
	assert.GreaterOrEqual(t, stats.DedupRatio(), 1.0)
}
