package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceephoto/photohost/pkg/photohost"
)

func validConfig() ServerConfig {
	return ServerConfig{
		Port:            "8080",
		DatabaseURL:     "memory",
		StorageType:     "memory",
		ThumbnailMaxDim: 400,
		SmallMaxDim:     1600,
		MediumMaxDim:    2400,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{"valid", func(c *ServerConfig) {}, false},
		{"postgres url", func(c *ServerConfig) { c.DatabaseURL = "postgresql://localhost/photos" }, false},
		{"missing port", func(c *ServerConfig) { c.Port = "" }, true},
		{"unknown storage type", func(c *ServerConfig) { c.StorageType = "tape" }, true},
		{"s3 without bucket", func(c *ServerConfig) { c.StorageType = "s3" }, true},
		{"bad database url", func(c *ServerConfig) { c.DatabaseURL = "mysql://localhost/photos" }, true},
		{"zero variant size", func(c *ServerConfig) { c.ThumbnailMaxDim = 0 }, true},
		{"negative variant size", func(c *ServerConfig) { c.MediumMaxDim = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVariantSpecsFromEnv(t *testing.T) {
	t.Setenv("VARIANT_THUMBNAIL_MAX_DIM", "256")
	t.Setenv("VARIANT_SMALL_MAX_DIM", "1024")
	t.Setenv("VARIANT_MEDIUM_MAX_DIM", "2048")
	t.Setenv("VARIANT_CACHE_DIR", t.TempDir())

	cfg, err := LoadServerConfig()
	require.NoError(t, err)

	specs := cfg.variantSpecs()
	require.Len(t, specs, 3)
	assert.Equal(t, photohost.VariantThumbnail, specs[0].Name)
	assert.Equal(t, 256, specs[0].MaxDim)
	assert.Equal(t, photohost.VariantSmall, specs[1].Name)
	assert.Equal(t, 1024, specs[1].MaxDim)
	assert.Equal(t, photohost.VariantMedium, specs[2].Name)
	assert.Equal(t, 2048, specs[2].MaxDim)
}

func TestVariantSpecsDefaults(t *testing.T) {
	cfg := validConfig()
	specs := cfg.variantSpecs()
	require.Len(t, specs, 3)
	assert.Equal(t, 400, specs[0].MaxDim)
	assert.Equal(t, 1600, specs[1].MaxDim)
	assert.Equal(t, 2400, specs[2].MaxDim)
}
