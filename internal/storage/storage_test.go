package storage

import (
	"testing"

	"github.com/raheva/mirror/internal/config"
)

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore(config.StorageConfig{}); err == nil {
		t.Fatal("NewStore() with empty config should fail")
	}
	if _, err := NewStore(config.StorageConfig{Endpoint: "minio.local:9000"}); err == nil {
		t.Fatal("NewStore() without bucket should fail")
	}
}

func TestNewStoreConnects(t *testing.T) {
	store, err := NewStore(config.StorageConfig{
		Endpoint:  "minio.local:9000",
		Bucket:    "recordings",
		AccessKey: "ak",
		SecretKey: "sk",
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store.bucket != "recordings" {
		t.Errorf("bucket = %q", store.bucket)
	}
}
