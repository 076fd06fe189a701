package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"maxcdc/pkg/chunker"

	"github.com/spf13/viper"
)

const (
	// RepoDir 是仓库元数据目录名
	RepoDir   = ".maxcdc"
	EnvPrefix = "MAXCDC"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	// 1. 默认值
	SetDefaults()

	// 2. 配置搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 当前目录 -> ./.maxcdc -> ~/.maxcdc
		viper.AddConfigPath(".")
		viper.AddConfigPath(RepoDir)
		viper.AddConfigPath(filepath.Join(home, RepoDir))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 3. 环境变量 (MAXCDC_CHUNKER_WINDOW 等)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. 读取配置文件；没找到不算错，格式错才算
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("fatal error config file: %w", err)
		}
		slog.Debug("no config file found, using defaults and env vars")
	} else {
		slog.Debug("using config file", slog.String("path", viper.ConfigFileUsed()))
	}

	return nil
}

// SetDefaults 注册所有配置项的默认值
func SetDefaults() {
	viper.SetDefault("chunker.window", chunker.DefaultWindow)

	wd, _ := os.Getwd()
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.path", filepath.Join(wd, RepoDir, "objects"))

	viper.SetDefault("s3.region", "us-east-1")

	viper.SetDefault("cache.ttl", "24h")

	// database.driver 为空表示不启用 SQL 索引
	viper.SetDefault("database.driver", "")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("ingest.concurrency", 8)

	viper.SetDefault("server.addr", ":7070")
	viper.SetDefault("server.metrics_addr", ":9090")
	viper.SetDefault("remote.addr", "localhost:7070")

	viper.SetDefault("log.level", "info")
}

// LogLevel 解析 log.level
func LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return slog.LevelInfo
	}
	return level
}
