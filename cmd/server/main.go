package main

import (
	"context"
	"expvar"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gowvp/vtime/internal/app"
	"github.com/gowvp/vtime/internal/conf"
)

// 构建时经 -ldflags 注入
var (
	buildVersion = "dev"
	gitBranch    = "unknown"
	gitHash      = "unknown"
)

var confPath = flag.String("conf", "configs/config.toml", "配置文件路径")

func main() {
	flag.Parse()

	bc, err := conf.SetupConfig(*confPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	bc.BuildVersion = buildVersion

	setupLogger(bc.Debug)
	expvar.NewString("git_branch").Set(gitBranch)
	expvar.NewString("git_hash").Set(gitHash)

	slog.Info("vtime starting", "version", buildVersion, "branch", gitBranch, "hash", gitHash)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, bc); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	var h slog.Handler
	if debug {
		level = slog.LevelDebug
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(h))
}
