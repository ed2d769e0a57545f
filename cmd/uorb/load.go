package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dep2p/go-uorb/config"
	"github.com/dep2p/go-uorb/pkg/lib/log"
)

// loadConfig 按 默认值 < 配置文件 < 环境变量 < 命令行 的顺序解析配置
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	if g.envFile != "" {
		if err := godotenv.Load(g.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", g.envFile, err)
		}
	}

	cfg := config.NewConfig()
	if g.configFile != "" {
		data, err := os.ReadFile(g.configFile)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = config.FromJSON(data); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogging 按日志配置设置全局日志，返回需要在退出时关闭的文件
func setupLogging(cfg config.LogConfig) (io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	if err := log.Configure(w, cfg.Level, cfg.Format); err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	return closer, nil
}

// prepare 加载配置并设置日志
func prepare(cmd *cobra.Command, g *globalFlags) (*config.Config, func(), error) {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return nil, nil, err
	}
	closer, err := setupLogging(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if closer != nil {
			_ = closer.Close()
		}
	}
	return cfg, cleanup, nil
}
