package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/ceephoto/photohost/internal/photosync"
	s3storage "github.com/ceephoto/photohost/pkg/photohost/storage/s3"
)

type Config struct {
	PhotosDir   string `env:"PHOTOS_DIR" env-default:"./photos"`
	SiteDir     string `env:"SITE_DIR" env-default:"./site"`
	PollSeconds int    `env:"POLL_SECONDS" env-default:"10"`
	Watch       bool   `env:"WATCH" env-default:"false"`

	Region          string `env:"AWS_DEFAULT_REGION" env-default:"us-east-1"`
	Bucket          string `env:"S3_BUCKET" env-required:"true"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	GithubToken  string `env:"GITHUB_TOKEN" env-required:"true"`
	GithubRepo   string `env:"GH_REPO" env-required:"true"`
	GithubBranch string `env:"GH_BRANCH" env-default:"gh-pages"`
}

func main() {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "error", err)
		os.Exit(1)
	}

	store, err := s3storage.New(s3storage.Config{
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
	if err != nil {
		slog.Error("Failed to build storage backend", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.PhotosDir, 0o755); err != nil {
		slog.Error("Failed to create photos dir", "dir", cfg.PhotosDir, "error", err)
		os.Exit(1)
	}

	syncer := photosync.NewSyncer(store, cfg.PhotosDir, cfg.SiteDir)
	publisher := &photosync.GitPublisher{
		Token:  cfg.GithubToken,
		Repo:   cfg.GithubRepo,
		Branch: cfg.GithubBranch,
	}

	// Directory events trigger an immediate cycle on top of the poll.
	kick := make(chan struct{}, 1)
	if cfg.Watch {
		go watchDir(cfg.PhotosDir, kick)
	}

	ctx := context.Background()
	ticker := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer ticker.Stop()

	slog.Info("photosync starting",
		"photos_dir", cfg.PhotosDir,
		"bucket", cfg.Bucket,
		"poll_seconds", cfg.PollSeconds,
		"watch", cfg.Watch)

	for {
		runCycle(ctx, syncer, publisher)
		select {
		case <-ticker.C:
		case <-kick:
		}
	}
}

func runCycle(ctx context.Context, syncer *photosync.Syncer, publisher *photosync.GitPublisher) {
	changed, err := syncer.SyncOnce(ctx)
	if err != nil {
		slog.Error("Sync cycle failed", "error", err)
		return
	}
	if !changed {
		return
	}

	slog.Info("Change detected, committing and pushing")
	if err := publisher.Publish("Sync photos", syncer.ManifestPaths()); err != nil {
		slog.Error("Git push failed", "error", err)
	}
}

func watchDir(dir string, kick chan<- struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create watcher", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		slog.Error("Failed to watch dir", "dir", dir, "error", err)
		return
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				select {
				case kick <- struct{}{}:
				default:
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}
