package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("UPLOAD_SWEEP_SCHEDULE", "")

	cfg := LoadConfig()
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, StorageLocal, cfg.StorageBackend)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, "@every 1h", cfg.UploadSweepSchedule)
	assert.Equal(t, "linkfeed", cfg.R2.Folder)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_BACKEND", StorageR2)
	t.Setenv("R2_BUCKET_NAME", "media")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageR2, cfg.StorageBackend)
	assert.Equal(t, "media", cfg.R2.BucketName)
	assert.Equal(t, "nats://localhost:4222", cfg.NatsURL)
}
