package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"maxcdc/pkg/chunker"
	"maxcdc/pkg/exporter"
	"maxcdc/pkg/index"
	"maxcdc/pkg/ingester"
	"maxcdc/pkg/meta"
	"maxcdc/pkg/metrics"
	"maxcdc/pkg/storage"
	"maxcdc/pkg/storage/cache"
	"maxcdc/pkg/storage/disk"
	"maxcdc/pkg/storage/s3"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器
// 它持有所有"单例"服务，按 Viper 配置组装
type App struct {
	Chunker  *chunker.Chunker
	Store    storage.Store
	Index    *index.Index
	Meta     *meta.Repository // 未配置数据库时为 nil
	Metrics  *metrics.Collector
	Ingester *ingester.Ingester
	Exporter *exporter.Exporter
	RepoPath string

	closers []io.Closer
}

// NewApp 组装应用；reg 为 nil 时不采集指标
func NewApp(ctx context.Context, reg prometheus.Registerer) (*App, error) {
	// 1. 仓库根路径: storage.path 的上一层 (.../.maxcdc/objects -> .../.maxcdc)
	storePath := viper.GetString("storage.path")
	if storePath == "" {
		return nil, fmt.Errorf("storage path not set")
	}
	repoPath := filepath.Dir(storePath)

	a := &App{RepoPath: repoPath}

	// 2. 切分器
	c, err := chunker.NewChunker(viper.GetInt("chunker.window"))
	if err != nil {
		return nil, fmt.Errorf("invalid chunker config: %w", err)
	}
	a.Chunker = c

	// 3. 存储层
	store, err := initStore(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	a.Store = store
	if closer, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}

	// 4. 本地目录
	idx, err := index.NewIndex(filepath.Join(repoPath, "index.json"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	a.Index = idx

	// 5. SQL 索引 (可选)
	repo, db, err := initMeta(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	if db != nil {
		a.Meta = repo
		a.closers = append(a.closers, db)
	}

	// 6. 指标
	if reg != nil {
		m, err := metrics.New(reg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		a.Metrics = m
	}

	a.Ingester = ingester.NewIngester(a.Store, a.Chunker,
		ingester.WithConcurrency(viper.GetInt("ingest.concurrency")),
		ingester.WithMetrics(a.Metrics),
	)
	a.Exporter = exporter.NewExporter(a.Store)
	return a, nil
}

// Close 释放 redis / 数据库连接
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// initStore 按 storage.type 创建存储，配置了 cache.redis_url 时包一层缓存
func initStore(ctx context.Context, repoPath string) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)

	switch t := viper.GetString("storage.type"); t {
	case "", "disk":
		path := viper.GetString("storage.path")
		if path == "" {
			path = filepath.Join(repoPath, "objects")
		}
		store, err = disk.NewAdapter(path)
	case "s3":
		store, err = s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("s3.endpoint"),
			Region:          viper.GetString("s3.region"),
			Bucket:          viper.GetString("s3.bucket"),
			AccessKeyID:     viper.GetString("s3.access_key"),
			SecretAccessKey: viper.GetString("s3.secret_key"),
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if url := viper.GetString("cache.redis_url"); url != "" {
		cached, err := cache.NewCachedStore(store, cache.Config{
			RedisURL: url,
			TTL:      viper.GetDuration("cache.ttl"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init cache: %w", err)
		}
		store = cached
	}
	return store, nil
}

// initMeta 在配置了 database.driver 时连接数据库
func initMeta(ctx context.Context) (*meta.Repository, *meta.DB, error) {
	driver := viper.GetString("database.driver")
	if driver == "" {
		return nil, nil, nil
	}

	db, err := meta.NewDB(ctx, meta.Config{
		Driver:   driver,
		DSN:      viper.GetString("database.dsn"),
		Host:     viper.GetString("database.host"),
		Port:     viper.GetInt("database.port"),
		User:     viper.GetString("database.user"),
		Password: viper.GetString("database.password"),
		DBName:   viper.GetString("database.name"),
		SSLMode:  viper.GetString("database.sslmode"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init metadata db: %w", err)
	}
	return meta.NewRepository(db), db, nil
}
