package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperengineering/carelog/internal/config"
)

func TestLocalStorage_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(filepath.Join(dir, "images"), "static/images/")
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	ref, err := ls.Put(context.Background(), []byte("png-bytes"), "image/png", ".png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.HasPrefix(ref, "/static/images/") || !strings.HasSuffix(ref, ".png") {
		t.Errorf("Put() ref = %q", ref)
	}

	name := strings.TrimPrefix(ref, "/static/images/")
	data, err := os.ReadFile(filepath.Join(ls.Dir(), name))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("artifact content = %q", data)
	}

	if err := ls.Delete(context.Background(), ref); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(ls.Dir(), name)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("artifact still present after Delete: %v", err)
	}

	// Deleting again is not an error.
	if err := ls.Delete(context.Background(), ref); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestLocalStorage_UniqueNames(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/static/images")
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ref, err := ls.Put(context.Background(), []byte{byte(i)}, "image/png", "png")
		if err != nil {
			t.Fatal(err)
		}
		if seen[ref] {
			t.Fatalf("duplicate ref %q", ref)
		}
		seen[ref] = true
	}
}

func TestLocalStorage_DeleteRejectsForeignRefs(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/static/images")
	if err != nil {
		t.Fatal(err)
	}
	for _, ref := range []string{"/other/x.png", "/static/images/", "/static/images/../secret"} {
		if err := ls.Delete(context.Background(), ref); !errors.Is(err, ErrUnknownReference) {
			t.Errorf("Delete(%q) error = %v, want ErrUnknownReference", ref, err)
		}
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	s, err := New(config.StorageConfig{Backend: config.StorageLocal, LocalDir: t.TempDir(), PublicPrefix: "/static/images"})
	if err != nil {
		t.Fatalf("New(local) error = %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Errorf("New(local) = %T, want *LocalStorage", s)
	}

	s, err = New(config.StorageConfig{Backend: config.StorageS3, S3Endpoint: "localhost:9000", S3Bucket: "images"})
	if err != nil {
		t.Fatalf("New(s3) error = %v", err)
	}
	if _, ok := s.(*S3Storage); !ok {
		t.Errorf("New(s3) = %T, want *S3Storage", s)
	}

	if _, err := New(config.StorageConfig{Backend: "ftp"}); err == nil {
		t.Error("New(ftp) should fail")
	}
}
