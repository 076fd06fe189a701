package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"maxcdc/pkg/app"
	"maxcdc/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// skipAppAnnotation 标记不需要仓库的命令 (init / chunk / 远程命令)
const skipAppAnnotation = "maxcdc/skip-app"

var (
	cfgFile string
	verbose bool

	// MC 是全局应用实例，供子命令使用
	MC *app.App
)

var rootCmd = &cobra.Command{
	Use:           "maxcdc",
	Short:         "maxcdc: local-maximum content-defined chunking",
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE 在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(cmd.ErrOrStderr())

		if !needsApp(cmd) {
			return nil
		}
		return openApp(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if MC == nil {
			return nil
		}
		err := MC.Close()
		MC = nil
		return err
	},
}

// Execute 是入口
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.maxcdc/config.yaml or $HOME/.maxcdc/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// 既可以写在 yaml 里，也可以用命令行覆盖
	flags.String("storage-path", "", "directory to store objects")
	flags.Int("window", 0, "chunker window in bytes (default from config)")
	flags.String("remote", "", "address of a maxcdc server")
	for key, name := range map[string]string{
		"storage.path":   "storage-path",
		"chunker.window": "window",
		"remote.addr":    "remote",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			fmt.Fprintln(os.Stderr, "Failed to bind flag:", err)
			os.Exit(1)
		}
	}
}

func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Config error:", err)
		os.Exit(1)
	}
}

func setupLogger(w io.Writer) {
	level := config.LogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// needsApp 判断命令是否需要打开仓库；help / completion 不需要
func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipAppAnnotation] != "" {
			return false
		}
		if c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

// openApp 组装 MC；本地磁盘仓库必须先 init
func openApp(ctx context.Context) error {
	if viper.GetString("storage.type") == "disk" {
		repoPath := filepath.Dir(viper.GetString("storage.path"))
		if _, err := os.Stat(repoPath); errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("not a maxcdc repository: %s (run 'maxcdc init' first)", repoPath)
		}
	}

	// 上一条命令出错时不会走 PersistentPostRunE
	if MC != nil {
		MC.Close()
	}

	var err error
	MC, err = app.NewApp(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize maxcdc: %w", err)
	}
	return nil
}
