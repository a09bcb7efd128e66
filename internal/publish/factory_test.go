package publish

import (
	"context"
	"path/filepath"
	"testing"

	"tuto-go/internal/config"
)

func TestNewPublisherFromConfig(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	tests := []struct {
		name    string
		cfg     config.PublishConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.PublishConfig{Type: "memory"}},
		{name: "filesystem", cfg: config.PublishConfig{Type: "filesystem", Root: filepath.Join(t.TempDir(), "out")}},
		{name: "filesystem without root", cfg: config.PublishConfig{Type: "filesystem"}, wantErr: true},
		{name: "s3", cfg: config.PublishConfig{Type: "s3", S3Bucket: "tutor", S3Region: "eu-central-1"}},
		{name: "s3 without bucket", cfg: config.PublishConfig{Type: "s3"}, wantErr: true},
		{name: "not configured", cfg: config.PublishConfig{}, wantErr: true},
		{name: "unknown type", cfg: config.PublishConfig{Type: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPublisherFromConfig(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPublisherFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && got != nil {
				t.Error("NewPublisherFromConfig() should return nil on error")
			}
			if !tt.wantErr && got == nil {
				t.Error("NewPublisherFromConfig() returned nil")
			}
		})
	}
}
