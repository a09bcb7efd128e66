package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemPublisher(t *testing.T) {
	root := filepath.Join(t.TempDir(), "share", "ws24")

	p, err := NewFileSystemPublisher(root)
	if err != nil {
		t.Fatalf("NewFileSystemPublisher() error = %v", err)
	}
	if err := p.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}

func TestFileSystemPublisher_Put(t *testing.T) {
	tests := []struct {
		name    string
		bundle  string
		data    string
		size    int64
		wantErr bool
	}{
		{
			name:   "stores bundle",
			bundle: "feedbacks.zip",
			data:   "zip bytes",
			size:   9,
		},
		{
			name:    "size mismatch",
			bundle:  "feedbacks.zip",
			data:    "zip bytes",
			size:    100,
			wantErr: true,
		},
		{
			name:    "rejects nested name",
			bundle:  "../feedbacks.zip",
			data:    "x",
			size:    1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			p, err := NewFileSystemPublisher(root)
			if err != nil {
				t.Fatalf("NewFileSystemPublisher() error = %v", err)
			}

			err = p.Put(tt.bundle, strings.NewReader(tt.data), tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Put() error = %v, wantErr %v", err, tt.wantErr)
			}

			entries, _ := os.ReadDir(root)
			if tt.wantErr {
				if len(entries) != 0 {
					t.Errorf("publish root not empty after failure: %v", entries)
				}
				return
			}

			got, err := os.ReadFile(filepath.Join(root, tt.bundle))
			if err != nil {
				t.Fatalf("reading published bundle: %v", err)
			}
			if string(got) != tt.data {
				t.Errorf("bundle = %q, want %q", got, tt.data)
			}
		})
	}
}

func TestFileSystemPublisher_PutReplaces(t *testing.T) {
	root := t.TempDir()
	p, err := NewFileSystemPublisher(root)
	if err != nil {
		t.Fatalf("NewFileSystemPublisher() error = %v", err)
	}

	for _, data := range []string{"first", "second run"} {
		if err := p.Put("feedbacks.zip", strings.NewReader(data), int64(len(data))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	got, err := os.ReadFile(filepath.Join(root, "feedbacks.zip"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second run" {
		t.Errorf("bundle = %q, want %q", got, "second run")
	}
}

func TestFileSystemPublisher_ValidateSetup(t *testing.T) {
	root := t.TempDir()
	p, err := NewFileSystemPublisher(root)
	if err != nil {
		t.Fatalf("NewFileSystemPublisher() error = %v", err)
	}

	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	if err := p.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() expected error for removed root")
	}

	if err := os.WriteFile(root, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := p.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() expected error for file root")
	}
}
