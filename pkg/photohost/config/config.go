// Package config loads server configuration from the environment and builds
// a ready-to-use photo service from it.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ceephoto/photohost/pkg/photohost"
	"github.com/ceephoto/photohost/pkg/photohost/feed"
	repomemory "github.com/ceephoto/photohost/pkg/photohost/repo/memory"
	repopg "github.com/ceephoto/photohost/pkg/photohost/repo/postgres"
	fsstorage "github.com/ceephoto/photohost/pkg/photohost/storage/fs"
	memorystorage "github.com/ceephoto/photohost/pkg/photohost/storage/memory"
	s3storage "github.com/ceephoto/photohost/pkg/photohost/storage/s3"
	"github.com/ceephoto/photohost/pkg/photohost/variant"
)

// ServerConfig represents server configuration for the photo service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// Database configuration. "memory" or a postgres URL.
	DatabaseURL string `env:"DATABASE_URL" env-default:"memory"`

	// Storage configuration
	StorageType string `env:"STORAGE_TYPE" env-default:"memory"` // "memory", "fs", "s3"
	FSBaseDir   string `env:"FS_BASE_DIR" env-default:"./data"`
	FSURLPrefix string `env:"FS_URL_PREFIX"`

	S3 S3Config

	// Variant derivation. Sizes are the bounding-box edge in pixels.
	VariantCacheDir string `env:"VARIANT_CACHE_DIR" env-default:"./cache"`
	ThumbnailMaxDim int    `env:"VARIANT_THUMBNAIL_MAX_DIM" env-default:"400"`
	SmallMaxDim     int    `env:"VARIANT_SMALL_MAX_DIM" env-default:"1600"`
	MediumMaxDim    int    `env:"VARIANT_MEDIUM_MAX_DIM" env-default:"2400"`

	Feed FeedConfig
}

// S3Config holds credentials and addressing for S3-compatible storage
type S3Config struct {
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	Bucket          string `env:"AWS_S3_BUCKET"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"AWS_S3_ENDPOINT"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	PublicURLBase   string `env:"S3_PUBLIC_URL_BASE"`
	CreateBucket    bool   `env:"S3_CREATE_BUCKET" env-default:"false"`
}

// FeedConfig identifies the RSS channel
type FeedConfig struct {
	Title       string `env:"FEED_TITLE" env-default:"Photos"`
	SiteURL     string `env:"FEED_SITE_URL" env-default:"http://localhost:8080"`
	Description string `env:"FEED_DESCRIPTION" env-default:"Photo feed"`
	GUIDHost    string `env:"FEED_GUID_HOST" env-default:"localhost"`
}

// LoadServerConfig reads configuration from the environment
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	switch c.StorageType {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("storage_type must be 'memory', 'fs' or 's3', got %q", c.StorageType)
	}
	if c.StorageType == "s3" && c.S3.Bucket == "" {
		return errors.New("s3 bucket is required when storage_type is s3")
	}
	if c.DatabaseURL != "memory" && !isPostgresURL(c.DatabaseURL) {
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", c.DatabaseURL)
	}
	for _, spec := range c.variantSpecs() {
		if spec.MaxDim <= 0 {
			return fmt.Errorf("variant %s size must be positive, got %d", spec.Name, spec.MaxDim)
		}
	}
	return nil
}

func isPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (photohost.Service, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	deriver, err := variant.New(variant.Config{CacheDir: c.VariantCacheDir})
	if err != nil {
		return nil, fmt.Errorf("failed to build variant deriver: %w", err)
	}

	return photohost.New(
		photohost.WithRepository(repo),
		photohost.WithBlobStore(store),
		photohost.WithDeriver(deriver),
		photohost.WithVariants(c.variantSpecs()...),
	)
}

// variantSpecs builds the variant table from the configured sizes.
func (c *ServerConfig) variantSpecs() []variant.Spec {
	return []variant.Spec{
		{Name: photohost.VariantThumbnail, MaxDim: c.ThumbnailMaxDim},
		{Name: photohost.VariantSmall, MaxDim: c.SmallMaxDim},
		{Name: photohost.VariantMedium, MaxDim: c.MediumMaxDim},
	}
}

// FeedSettings returns the feed channel configuration.
func (c *ServerConfig) FeedSettings() feed.Config {
	return feed.Config{
		Title:       c.Feed.Title,
		SiteURL:     strings.TrimRight(c.Feed.SiteURL, "/"),
		Description: c.Feed.Description,
		GUIDHost:    c.Feed.GUIDHost,
	}
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (photohost.Repository, error) {
	if c.DatabaseURL == "memory" || c.DatabaseURL == "" {
		return repomemory.New(), nil
	}

	pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return repopg.NewWithPool(pool), nil
}

// buildBlobStore creates a BlobStore based on the configuration
func (c *ServerConfig) buildBlobStore() (photohost.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FSBaseDir,
			URLPrefix: c.FSURLPrefix,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PublicURLBase:          c.S3.PublicURLBase,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unknown storage type: %s", c.StorageType)
	}
}
