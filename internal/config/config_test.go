package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORTAL_TIMEOUT", "RECEIPT_BULK_INTERVAL", "LOOKUP_CACHE_TTL", "S3_PATH_STYLE", "REDIS_DB", "S3_BUCKET", "HTTP_ADDR", "HTTP_RENDER_RATE", "HTTP_RENDER_BURST"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BulkInterval != 500*time.Millisecond {
		t.Errorf("BulkInterval = %v", cfg.BulkInterval)
	}
	if cfg.HTTPRenderRate != 0 || cfg.HTTPRenderBurst != 10 {
		t.Errorf("render limit = %v/%d", cfg.HTTPRenderRate, cfg.HTTPRenderBurst)
	}
	if cfg.HTTPAddr != ":8080" || !cfg.S3PathStyle || cfg.UseS3() {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.RequireS3(); err == nil {
		t.Error("RequireS3 passed without a bucket")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RECEIPT_BULK_INTERVAL", "2s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("S3_PATH_STYLE", "false")
	t.Setenv("PORTAL_BASE_URL", "https://portal.example")
	t.Setenv("HTTP_RENDER_RATE", "2.5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BulkInterval != 2*time.Second || cfg.RedisDB != 3 || cfg.S3PathStyle || cfg.HTTPRenderRate != 2.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if err := cfg.RequirePortal(); err != nil {
		t.Errorf("RequirePortal: %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	t.Setenv("PORTAL_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "zero")
	t.Setenv("HTTP_RENDER_RATE", "fast")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"PORTAL_TIMEOUT", "REDIS_DB", "HTTP_RENDER_RATE"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}
